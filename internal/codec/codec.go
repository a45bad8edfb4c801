// Package codec converts entities to and from single pipe-delimited text lines.
//
// Every codec trims fields on decode and never trims on encode. Blank lines and
// lines starting with '#' decode to ErrSkipLine; anything else that cannot be
// decoded yields a *ParseError so the caller can drop the line and keep loading.
package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hospital-records/internal/domain/entity"

	"github.com/shopspring/decimal"
)

const (
	FieldSeparator     = "|"
	ItemSeparator      = ";"
	ItemFieldSeparator = ":"
	ListSeparator      = ","
	CommentPrefix      = "#"
)

// ErrSkipLine is returned by Decode for blank and comment lines.
var ErrSkipLine = errors.New("blank or comment line")

// Codec encodes one entity kind.
type Codec[T any] interface {
	Entity() string
	Fields() []string
	Encode(T) string
	Decode(line string) (T, error)
}

// ParseError describes why a line could not be decoded.
type ParseError struct {
	Entity string
	Field  string
	Reason string
	Line   string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("%s: field %q: %s", e.Entity, e.Field, e.Reason)
}

// WarnFunc is told about lenient fields that were defaulted instead of rejected.
type WarnFunc func(entity, field, value string)

// Option configures a codec.
type Option func(*options)

type options struct {
	warn WarnFunc
}

// WithWarnFunc reports lenient enum fallbacks (gender, status) to fn.
func WithWarnFunc(fn WarnFunc) Option {
	return func(o *options) { o.warn = fn }
}

func newOptions(opts []Option) options {
	o := options{warn: func(string, string, string) {}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.warn == nil {
		o.warn = func(string, string, string) {}
	}
	return o
}

// Header renders the comment lines written at the top of a data file.
func Header[T any](c Codec[T]) []string {
	return []string{
		fmt.Sprintf("%s %s records", CommentPrefix, c.Entity()),
		fmt.Sprintf("%s Format: %s", CommentPrefix, strings.Join(c.Fields(), FieldSeparator)),
	}
}

// IsSkippable reports whether a raw line carries no record.
func IsSkippable(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, CommentPrefix)
}

func join(fields ...string) string {
	return strings.Join(fields, FieldSeparator)
}

func formatFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// record walks the fields of one line, remembering the first failure.
type record struct {
	entity string
	names  []string
	line   string
	parts  []string
	err    *ParseError
}

func split(entity string, names []string, line string) (*record, error) {
	if IsSkippable(line) {
		return nil, ErrSkipLine
	}
	parts := strings.Split(line, FieldSeparator)
	if len(parts) != len(names) {
		return nil, &ParseError{
			Entity: entity,
			Reason: fmt.Sprintf("expected %d fields, got %d", len(names), len(parts)),
			Line:   line,
		}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return &record{entity: entity, names: names, line: line, parts: parts}, nil
}

func (r *record) fail(i int, reason string) {
	if r.err == nil {
		r.err = &ParseError{Entity: r.entity, Field: r.names[i], Reason: reason, Line: r.line}
	}
}

// result returns the first failure as an error, keeping nil untyped.
func (r *record) result() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

func (r *record) optional(i int) string {
	return r.parts[i]
}

func (r *record) required(i int) string {
	if r.parts[i] == "" {
		r.fail(i, "required field is empty")
	}
	return r.parts[i]
}

func (r *record) count(i int) int {
	n, err := strconv.Atoi(r.required(i))
	if err != nil {
		r.fail(i, "not an integer")
		return 0
	}
	if n < 0 {
		r.fail(i, "must not be negative")
	}
	return n
}

func (r *record) money(i int) decimal.Decimal {
	d, err := decimal.NewFromString(r.required(i))
	if err != nil {
		r.fail(i, "not a number")
		return decimal.Zero
	}
	if d.IsNegative() {
		r.fail(i, "must not be negative")
	}
	return d
}

func (r *record) flag(i int) bool {
	switch strings.ToLower(r.required(i)) {
	case "1", "true":
		return true
	case "0", "false":
		return false
	}
	r.fail(i, "expected 0 or 1")
	return false
}

func (r *record) date(i int, required bool) string {
	s := r.parts[i]
	if s == "" {
		if required {
			r.fail(i, "required field is empty")
		}
		return ""
	}
	if !entity.ValidDate(s) {
		r.fail(i, "invalid date, expected YYYY-MM-DD")
	}
	return s
}

func (r *record) clock(i int) string {
	s := r.required(i)
	if s != "" && !entity.ValidTime(s) {
		r.fail(i, "invalid time, expected HH:MM")
	}
	return s
}

func (r *record) gender(i int, warn WarnFunc) entity.Gender {
	g, ok := entity.ParseGender(r.parts[i])
	if !ok {
		warn(r.entity, r.names[i], r.parts[i])
	}
	return g
}
