package semantic

import (
	"github.com/dr8co/zinc/ast"
	"github.com/dr8co/zinc/token"
)

// checkAttributes validates the shape of a function's #[...] attributes
//: #[zksync::msg(...)] must carry all four ordered
// fields, and a function may not combine #[should_panic] without
// #[test] (should_panic only means something on a test function).
func (a *Analyzer) checkAttributes(attrs []ast.Attribute, fallback token.Location) {
	hasTest := false
	for _, attr := range attrs {
		if attr.Kind == ast.AttrTest {
			hasTest = true
		}
	}
	for _, attr := range attrs {
		loc := attr.TokenTok.Location
		if loc == (token.Location{}) {
			loc = fallback
		}
		switch attr.Kind {
		case ast.AttrZksyncMsg:
			if attr.Msg == nil {
				a.errorf(loc, ErrAttributeShape, "zksync::msg requires sender, recipient, token_address and amount")
				continue
			}
			if attr.Msg.Sender == "" || attr.Msg.Recipient == "" || attr.Msg.TokenAddress == "" || attr.Msg.Amount == "" {
				a.errorf(loc, ErrAttributeShape, "zksync::msg is missing one or more of its four required fields")
			}
		case ast.AttrShouldPanic:
			if !hasTest {
				a.errorf(loc, ErrAttributeShape, "should_panic has no effect without #[test]")
			}
		}
	}
}
