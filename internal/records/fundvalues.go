package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"equity-strategy-lab/internal/domain"
)

// ReadFundValues parses an equity curve: year,month,day,value per line.
// Same lenient/strict contract as ReadOrders.
func ReadFundValues(r io.Reader, strict bool) ([]domain.FundValueRecord, []error, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var values []domain.FundValueRecord
	var lineErrs []error
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, lineErrs, fmt.Errorf("read fund values: %w", err)
		}
		line++

		v, err := parseFundValueRecord(record)
		if err != nil {
			err = fmt.Errorf("line %d: %w", line, err)
			if strict {
				return nil, nil, err
			}
			lineErrs = append(lineErrs, err)
			continue
		}
		values = append(values, v)
	}
	return values, lineErrs, nil
}

func parseFundValueRecord(record []string) (domain.FundValueRecord, error) {
	record = trimTrailingEmpty(record)
	if len(record) != 4 {
		return domain.FundValueRecord{}, fmt.Errorf("%w: expected 4 columns, got %d", ErrMalformedRecord, len(record))
	}

	date, err := parseDateColumns(record[0], record[1], record[2])
	if err != nil {
		return domain.FundValueRecord{}, err
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
	if err != nil {
		return domain.FundValueRecord{}, fmt.Errorf("%w: value %q", ErrMalformedRecord, record[3])
	}
	return domain.FundValueRecord{Date: date, Value: value}, nil
}

// WriteFundValues renders an equity curve losslessly: values use the shortest
// decimal form that parses back to the identical float64.
func WriteFundValues(w io.Writer, values []domain.FundValueRecord) error {
	writer := csv.NewWriter(w)
	for _, v := range values {
		record := append(dateColumns(v.Date), strconv.FormatFloat(v.Value, 'g', -1, 64))
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write fund values: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
