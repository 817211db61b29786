// Package errcode defines the closed set of status codes reported by the
// parser, query engine and sinks. A nil error means success.
package errcode

import (
	"errors"
	"regexp/syntax"
)

// Code is a status code. It implements error so callers can use errors.Is.
type Code int

const (
	ParseFailed Code = iota + 1
	InvalidTimestamp
	IncompleteArguments
	InvalidDate
	InvalidTime
	InvalidTimestampOrAddress
	XMLFileNotSaved
	XMLFileNameInconsistent
	RegexCollate
	RegexCharClass
	RegexEscape
	RegexBackref
	RegexBracket
	RegexParen
	RegexBrace
	RegexBadBrace
	RegexRange
	RegexSpace
	RegexBadRepeat
	RegexComplexity
	RegexStack
	BoundMismatch

	Unknown Code = 0xff
)

// SuccessText is the description of a nil status.
const SuccessText = "Success!"

const unknownText = "Unknown Error."

var descriptions = map[Code]string{
	ParseFailed:               "Parser Error: Probable reasons: badly formatted input.",
	InvalidTimestamp:          "Invalid Timestamp.",
	IncompleteArguments:       "Incomplete Number of Arguments.",
	InvalidDate:               "Invalid Date: ",
	InvalidTime:               "Invalid Time: ",
	InvalidTimestampOrAddress: "Timestamp and/or IP address is wrong.",
	XMLFileNotSaved:           "File cannot be saved.",
	XMLFileNameInconsistent:   "File name is inconsistent.",
	RegexCollate:              "The expression contains an invalid collating element name.",
	RegexCharClass:            "The expression contains an invalid character class name.",
	RegexEscape:               "The expression contains an invalid escaped character or a trailing escape.",
	RegexBackref:              "The expression contains an invalid back reference.",
	RegexBracket:              "The expression contains mismatched square brackets ('[' and ']').",
	RegexParen:                "The expression contains mismatched parentheses ('(' and ')').",
	RegexBrace:                "The expression contains mismatched curly braces ('{' and '}').",
	RegexBadBrace:             "The expression contains an invalid range in a {} expression.",
	RegexRange:                "The expression contains an invalid character range (e.g. [b-a]).",
	RegexSpace:                "There was not enough memory to convert the expression into a finite state machine.",
	RegexBadRepeat:            "One of *?+{ was not preceded by a valid regular expression.",
	RegexComplexity:           "The complexity of an attempted match exceeded a predefined level.",
	RegexStack:                "There was not enough memory to perform a match.",
	BoundMismatch:             "Range comparison requires a second bound of the same type.",
	Unknown:                   unknownText,
}

func (c Code) Error() string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return unknownText
}

// Text describes err: SuccessText for nil, the table entry for a Code found
// in the chain, the error's own message otherwise.
func Text(err error) string {
	if err == nil {
		return SuccessText
	}
	var c Code
	if errors.As(err, &c) {
		return c.Error()
	}
	return err.Error()
}

// FromRegexp maps a regexp compilation error onto the regex status family.
// RE2 has no back references, so `\1` surfaces as RegexEscape.
func FromRegexp(err error) Code {
	var se *syntax.Error
	if !errors.As(err, &se) {
		return Unknown
	}
	switch se.Code {
	case syntax.ErrInvalidCharClass:
		return RegexCharClass
	case syntax.ErrInvalidEscape, syntax.ErrTrailingBackslash:
		return RegexEscape
	case syntax.ErrMissingBracket:
		return RegexBracket
	case syntax.ErrMissingParen, syntax.ErrUnexpectedParen, syntax.ErrInvalidNamedCapture:
		return RegexParen
	case syntax.ErrInvalidRepeatSize:
		return RegexBadBrace
	case syntax.ErrInvalidCharRange:
		return RegexRange
	case syntax.ErrMissingRepeatArgument, syntax.ErrInvalidRepeatOp:
		return RegexBadRepeat
	case syntax.ErrLarge:
		return RegexSpace
	case syntax.ErrNestingDepth:
		return RegexComplexity
	case syntax.ErrInvalidUTF8:
		return RegexCollate
	case syntax.ErrInvalidPerlOp:
		return RegexBackref
	}
	return Unknown
}
