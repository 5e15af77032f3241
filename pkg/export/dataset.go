package export

import "fmt"

// Dataset defines tabular export content. Rows are positional and aligned with Headers.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// AddRow appends a record. Missing trailing cells render empty, extra cells are dropped.
func (d *Dataset) AddRow(values ...string) {
	d.Rows = append(d.Rows, values)
}

func (d Dataset) validate(kind string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", kind)
	}
	return nil
}

// record returns row i padded or truncated to the header count.
func (d Dataset) record(i int) []string {
	out := make([]string, len(d.Headers))
	copy(out, d.Rows[i])
	return out
}
