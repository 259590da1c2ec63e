package importing

import (
	"bufio"
	"cityquad/index"
	"fmt"
	"github.com/pkg/errors"
	"io"
	"strconv"
	"unicode/utf8"
)

const MaxLabelLength = 49

var labelTooLongReason = fmt.Sprintf("label is longer than %d characters", MaxLabelLength)

// Record is one "x y label" triple of a text input.
type Record struct {
	X     int
	Y     int
	Label string
}

func (r Record) ToEntity() index.Entity {
	return index.NewEntity(r.X, r.Y, r.Label)
}

// MalformedRecordError describes the record at which the reading of a text input stopped.
type MalformedRecordError struct {
	RecordNumber int
	Token        string
	Reason       string
}

func (e *MalformedRecordError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("Malformed record %d: %s", e.RecordNumber, e.Reason)
	}
	return fmt.Sprintf("Malformed record %d: %s (found '%s')", e.RecordNumber, e.Reason, e.Token)
}

// RecordScanner reads whitespace separated "x y label" records. Line breaks have no special meaning, so a record may
// span several lines and a line may contain several records. Scanning stops at the end of the input or at the first
// malformed record.
type RecordScanner struct {
	scanner *bufio.Scanner
	record  Record
	count   int
	err     error
}

func NewRecordScanner(reader io.Reader) *RecordScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanWords)
	return &RecordScanner{scanner: scanner}
}

func (s *RecordScanner) Scan() bool {
	if s.err != nil {
		return false
	}

	xToken, ok := s.nextToken("x coordinate is not an integer")
	if !ok {
		// End of input, a read error or an oversized token
		return false
	}
	x, err := strconv.Atoi(xToken)
	if err != nil {
		return s.malformed(xToken, "x coordinate is not an integer")
	}

	yToken, ok := s.nextToken("y coordinate is not an integer")
	if !ok {
		return s.malformed("", "y coordinate is missing")
	}
	y, err := strconv.Atoi(yToken)
	if err != nil {
		return s.malformed(yToken, "y coordinate is not an integer")
	}

	label, ok := s.nextToken(labelTooLongReason)
	if !ok {
		return s.malformed("", "label is missing")
	}
	if utf8.RuneCountInString(label) > MaxLabelLength {
		return s.malformed(label, labelTooLongReason)
	}

	s.count++
	s.record = Record{X: x, Y: y, Label: label}
	return true
}

func (s *RecordScanner) Record() Record {
	return s.record
}

// Count returns the number of successfully read records.
func (s *RecordScanner) Count() int {
	return s.count
}

// Err returns a *MalformedRecordError when the scanning stopped at a malformed record, any other non-nil error is a
// read error of the underlying reader.
func (s *RecordScanner) Err() error {
	return s.err
}

// nextToken returns false at the end of the input and on errors. A token exceeding the buffer of the scanner makes the
// current record malformed with the given reason.
func (s *RecordScanner) nextToken(tooLongReason string) (string, bool) {
	if s.err != nil {
		return "", false
	}
	if !s.scanner.Scan() {
		err := s.scanner.Err()
		if err == bufio.ErrTooLong {
			s.malformed("", tooLongReason)
		} else if err != nil {
			s.err = errors.Wrapf(err, "Unable to read record %d", s.count+1)
		}
		return "", false
	}
	return s.scanner.Text(), true
}

func (s *RecordScanner) malformed(token string, reason string) bool {
	if s.err == nil {
		s.err = &MalformedRecordError{
			RecordNumber: s.count + 1,
			Token:        token,
			Reason:       reason,
		}
	}
	return false
}
