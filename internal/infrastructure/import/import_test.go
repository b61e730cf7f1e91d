package csvimport

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, p *Parser) []*Row {
	t.Helper()
	var rows []*Row
	for {
		row, err := p.Next()
		if errors.Is(err, io.EOF) {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func TestParser_HeaderAndRows(t *testing.T) {
	input := "\xEF\xBB\xBF SKU ,Name,Price\nmug-1, Blue Mug ,12.50\n\n,,\ntee-1,Tee\n"
	p, err := NewParser(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"sku", "name", "price"}, p.Headers())
	assert.Equal(t, []string{"stock"}, p.Missing("sku", "stock"))

	rows := readAll(t, p)
	require.Len(t, rows, 3)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Blue Mug", rows[0].Get("name"))
	assert.Equal(t, "12.50", rows[0].Get("price"))
	assert.True(t, rows[1].IsEmpty())
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "", rows[2].Get("price"))
	assert.Equal(t, 5, rows[2].Line)
}

func TestParser_Errors(t *testing.T) {
	_, err := NewParser(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = NewParser(strings.NewReader("  \n"))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = NewParser(strings.NewReader("sku,na\xffme\nabcdef,ghijkl\n"))
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = NewParser(strings.NewReader(",,\n"))
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestValidator(t *testing.T) {
	v := NewValidator(
		Field("sku").Required().MaxLength(10).Unique(strings.ToUpper),
		Field("price").Required().Decimal().Min(0),
		Field("stock").Int().Min(0),
		Field("is_featured").Bool(),
		Field("status").OneOf("draft", "active"),
	)
	assert.Equal(t, []string{"sku", "price"}, v.Required())

	p, err := NewParser(strings.NewReader(
		"sku,price,stock,is_featured,status\n" +
			"a-1,10,5,yes,Active\n" +
			"A-1,abc,-1,maybe,sold\n" +
			",1,,,\n" +
			"waytoolongsku,-2,1.5,,\n"))
	require.NoError(t, err)
	rows := readAll(t, p)

	assert.Empty(t, v.Validate(rows[0]))

	errs := v.Validate(rows[1])
	codes := map[string]string{}
	for _, e := range errs {
		codes[e.Column] = e.Code
		assert.Equal(t, 3, e.Row)
	}
	assert.Equal(t, map[string]string{
		"sku":         CodeDuplicateInFile,
		"price":       CodeInvalidType,
		"stock":       CodeInvalidRange,
		"is_featured": CodeInvalidType,
		"status":      CodeInvalidValue,
	}, codes)

	errs = v.Validate(rows[2])
	require.Len(t, errs, 1)
	assert.Equal(t, CodeRequired, errs[0].Code)

	errs = v.Validate(rows[3])
	require.Len(t, errs, 3)
	assert.Equal(t, CodeInvalidLength, errs[0].Code)
	assert.Equal(t, CodeInvalidRange, errs[1].Code)
	assert.Equal(t, CodeInvalidType, errs[2].Code)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "YES", "y", "1"} {
		b, err := ParseBool(s)
		require.NoError(t, err)
		assert.True(t, b, s)
	}
	b, err := ParseBool("No")
	require.NoError(t, err)
	assert.False(t, b)
	_, err = ParseBool("maybe")
	assert.Error(t, err)
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf, []string{"sku", "name"}, []string{"MUG-1", "Mug, blue"}))
	assert.Equal(t, "sku,name\nMUG-1,\"Mug, blue\"\n", buf.String())
}
