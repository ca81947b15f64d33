package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// header 把列名映射到列下标，列名比较忽略大小写与首尾空白。
type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	row, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: %w", err)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := make(header, len(row))
	for i, name := range row {
		// 去掉 UTF-8 BOM
		name = strings.TrimPrefix(name, "\ufeff")
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return h, nil
}

func (h header) require(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := h[strings.ToLower(n)]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// get 返回某列的值；列不存在或该行过短时返回空串。
func (h header) get(row []string, name string) string {
	i, ok := h[strings.ToLower(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (h header) int64(row []string, name string) (int64, error) {
	return strconv.ParseInt(h.get(row, name), 10, 64)
}

// float 解析浮点列，空值视为 0。
func (h header) float(row []string, name string) (float64, error) {
	s := h.get(row, name)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	return reader
}

// each 逐行回调，fn 返回 false 表示该行被跳过。
func each(r io.Reader, required []string, fn func(h header, row []string) bool) (Stats, error) {
	var st Stats
	reader := newReader(r)
	h, err := readHeader(reader)
	if err != nil {
		return st, err
	}
	if err := h.require(required...); err != nil {
		return st, err
	}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return st, nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				st.Skipped++
				continue
			}
			return st, fmt.Errorf("read row %d: %w", st.Rows+st.Skipped+2, err)
		}
		if fn(h, row) {
			st.Rows++
		} else {
			st.Skipped++
		}
	}
}
