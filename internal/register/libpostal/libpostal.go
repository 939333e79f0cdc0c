// Package libpostal binds the libpostal address parser to the register
// splitter. It needs libpostal and its data files installed.
package libpostal

import (
	postal "github.com/openvenues/gopostal/parser"

	"github.com/at-addrcompare/internal/register"
)

// Parse parses address with libpostal.
func Parse(address string) []register.Component {
	parsed := postal.ParseAddressOptions(address, postal.ParserOptions{Country: "at", Language: "de"})
	out := make([]register.Component, 0, len(parsed))
	for _, c := range parsed {
		out = append(out, register.Component{Label: c.Label, Value: c.Value})
	}
	return out
}
