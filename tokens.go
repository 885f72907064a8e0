package zcss

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/zwebsuite/zcss/scanner"
	"github.com/zwebsuite/zcss/token"
)

// WriteTokens writes a table of the tokens in src to w. A scanner error
// stops the table at the failing token and is returned after the table
// has been written.
func WriteTokens(w io.Writer, src, source string) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.AppendHeader(table.Row{"#", "Pos", "Kind", "Raw", "Value"})

	var scanErr error
	n := 0
	for tok, err := range scanner.New(src, source).All() {
		if err != nil {
			scanErr = err
			break
		}
		tbl.AppendRow(table.Row{n, tok.Pos.String(), tok.Kind.String(), strconv.Quote(tok.Raw), tokenValue(tok)})
		n++
	}
	tbl.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("Total: %d tokens", n)})

	if _, err := fmt.Fprintln(w, tbl.Render()); err != nil {
		return err
	}
	return scanErr
}

// tokenValue describes the decoded value of a token.
func tokenValue(tok token.Token) string {
	switch tok.Kind {
	case token.NUMBER, token.DIMENSION:
		return fmt.Sprintf("%s %s%s", tok.Flag, strconv.FormatFloat(tok.Number, 'g', -1, 64), tok.Unit)
	case token.PERCENTAGE:
		return fmt.Sprintf("%s %s%%", tok.Flag, strconv.FormatFloat(tok.Number, 'g', -1, 64))
	case token.HASH:
		return fmt.Sprintf("%s %s", tok.Flag, tok.Value)
	case token.WHITESPACE, token.EOF:
		return ""
	}
	return tok.Value
}
