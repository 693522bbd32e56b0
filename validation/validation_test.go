package validation

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

type searchInput struct {
	Query        string `json:"query" validate:"valid_query"`
	ContextChars *int   `json:"context_chars" validate:"omitempty,min=0,max=500"`
}

type viewInput struct {
	Mode string `json:"mode" validate:"valid_view_mode"`
	Page int    `json:"page" validate:"min=0"`
}

type requiredInput struct {
	Name string `json:"display_name" validate:"required"`
}

func intPtr(n int) *int {
	return &n
}

type testCase struct {
	name          string
	input         any
	expectedError string
}

var validateTestCases = []testCase{
	{name: "PlainQuery", input: searchInput{Query: "hello world"}},
	{name: "EmptyQueryAllowed", input: searchInput{}},
	{name: "QueryWithNullByte", input: searchInput{Query: "a\x00b"}, expectedError: "invalid query"},
	{name: "QueryInvalidUTF8", input: searchInput{Query: "\xff\xfe"}, expectedError: "invalid query"},
	{name: "ContextInRange", input: searchInput{Query: "a", ContextChars: intPtr(500)}},
	{name: "ContextZero", input: searchInput{Query: "a", ContextChars: intPtr(0)}},
	{name: "ContextTooLarge", input: searchInput{Query: "a", ContextChars: intPtr(501)}, expectedError: "value or length of field 'context_chars' is not in the expected range"},
	{name: "ContextNegative", input: searchInput{Query: "a", ContextChars: intPtr(-1)}, expectedError: "value or length of field 'context_chars' is not in the expected range"},
	{name: "ViewModeEmpty", input: viewInput{}},
	{name: "ViewModeNumbered", input: viewInput{Mode: "numbered"}},
	{name: "ViewModeUnknown", input: viewInput{Mode: "raw"}, expectedError: "invalid view mode"},
	{name: "NegativePage", input: viewInput{Page: -1}, expectedError: "value or length of field 'page' is not in the expected range"},
	{name: "RequiredUsesJSONName", input: requiredInput{}, expectedError: "missing required field 'display_name'"},
}

func TestValidate(t *testing.T) {
	validator, err := New(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	require.NoError(t, err)

	for _, tc := range validateTestCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := require.New(t)
			err := validator.Validate(tc.input)
			if tc.expectedError == "" {
				assert.NoError(err)
				return
			}
			assert.EqualError(err, tc.expectedError)
		})
	}
}
