// Copyright 2025 The Contract Ledger Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package registration parses registration-info entries of the form
// `[type:]name=content` into typed values embedded in envelope headers.
//
// Supported types are text (default), bytes, and int. Content starting
// with '@' is read from the named file; anything else is used inline.
// Names cannot contain '=' or ':' since those separate the fields; there
// is currently no escape mechanism for such names.
package registration

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Type identifies how an entry's content is interpreted.
type Type int

const (
	// TypeText stores the content as a UTF-8 string.
	TypeText Type = iota
	// TypeBytes stores the content as a raw byte sequence.
	TypeBytes
	// TypeInt stores the content as a base-10 integer.
	TypeInt
)

// String returns the tag used for the type in entry strings.
func (t Type) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeBytes:
		return "bytes"
	case TypeInt:
		return "int"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// parseType maps an entry type tag to its Type. The tag set is closed;
// anything else is rejected by the caller as a format error.
func parseType(tag string) (Type, bool) {
	switch tag {
	case "text":
		return TypeText, true
	case "bytes":
		return TypeBytes, true
	case "int":
		return TypeInt, true
	default:
		return 0, false
	}
}

// FormatError reports a registration-info string that does not match the
// `[type:]name=content` grammar.
type FormatError struct {
	Raw    string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%q is not a valid registration info argument: %s", e.Raw, e.Reason)
}

// CoercionError reports content that cannot be converted to the entry's
// declared type.
type CoercionError struct {
	Name string
	Type Type
	Err  error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("registration info %q: cannot interpret content as %s: %v", e.Name, e.Type, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

// Value is one registration-info value: a UTF-8 string, a raw byte
// sequence, or an integer. Exactly one of the concrete types below
// implements it.
type Value interface {
	isValue()
}

// Text is a UTF-8 string value.
type Text string

// Bytes is a raw byte-sequence value.
type Bytes []byte

// Int is an integer value.
type Int int64

func (Text) isValue()  {}
func (Bytes) isValue() {}
func (Int) isValue()   {}

// Entry is the parsed form of a single registration-info argument.
// Content is kept unresolved so that file reads happen in a separate,
// independently testable step.
type Entry struct {
	Type    Type
	Name    string
	Content string
}

// ParseEntry parses a raw `[type:]name=content` string into an Entry.
//
// The type prefix is optional and defaults to text. The name ends at the
// first '='; the content is everything after it and may be empty.
// Returns a *FormatError if the string does not match the grammar or the
// type tag is not one of text, bytes, int.
func ParseEntry(raw string) (Entry, error) {
	head, content, ok := strings.Cut(raw, "=")
	if !ok {
		return Entry{}, &FormatError{Raw: raw, Reason: "missing '='"}
	}

	typ := TypeText
	name := head
	if tag, rest, hasType := strings.Cut(head, ":"); hasType {
		t, known := parseType(tag)
		if !known {
			return Entry{}, &FormatError{Raw: raw, Reason: fmt.Sprintf("%q is not a valid registration info type", tag)}
		}
		typ = t
		name = rest
	}

	if name == "" {
		return Entry{}, &FormatError{Raw: raw, Reason: "empty name"}
	}
	if strings.ContainsAny(name, "=:") {
		return Entry{}, &FormatError{Raw: raw, Reason: "name may not contain '=' or ':'"}
	}

	return Entry{Type: typ, Name: name, Content: content}, nil
}

// Resolve produces the typed value for the entry.
//
// Content of the form `@path` is read as raw bytes from the file at
// path; other content must be ASCII and is used directly. The resolved
// bytes are then coerced to the entry's type: UTF-8 validation for text,
// base-10 integer parsing for int, passthrough for bytes.
func (e Entry) Resolve() (Value, error) {
	var data []byte
	if strings.HasPrefix(e.Content, "@") {
		b, err := os.ReadFile(e.Content[1:])
		if err != nil {
			return nil, fmt.Errorf("registration info %q: %w", e.Name, err)
		}
		data = b
	} else {
		for i := 0; i < len(e.Content); i++ {
			if e.Content[i] > 0x7f {
				return nil, &CoercionError{Name: e.Name, Type: e.Type,
					Err: fmt.Errorf("inline content must be ASCII")}
			}
		}
		data = []byte(e.Content)
	}

	switch e.Type {
	case TypeBytes:
		return Bytes(data), nil
	case TypeText:
		if !utf8.Valid(data) {
			return nil, &CoercionError{Name: e.Name, Type: e.Type,
				Err: fmt.Errorf("content is not valid UTF-8")}
		}
		return Text(data), nil
	case TypeInt:
		if !utf8.Valid(data) {
			return nil, &CoercionError{Name: e.Name, Type: e.Type,
				Err: fmt.Errorf("content is not valid UTF-8")}
		}
		n, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
		if err != nil {
			return nil, &CoercionError{Name: e.Name, Type: e.Type, Err: err}
		}
		return Int(n), nil
	default:
		return nil, &CoercionError{Name: e.Name, Type: e.Type,
			Err: fmt.Errorf("unknown registration info type")}
	}
}

// Fold resolves entries in order into a name-keyed map. A later entry
// with the same name overwrites an earlier one, so the position of each
// entry is significant.
func Fold(entries []Entry) (map[string]Value, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	info := make(map[string]Value, len(entries))
	for _, e := range entries {
		v, err := e.Resolve()
		if err != nil {
			return nil, err
		}
		info[e.Name] = v
	}
	return info, nil
}
