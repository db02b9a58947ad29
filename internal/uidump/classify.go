package uidump

import "strings"

// Element types produced by Classify
const (
	TypeButton        = "button"
	TypeInput         = "input"
	TypeText          = "text"
	TypeImage         = "image"
	TypeCheckbox      = "checkbox"
	TypeRadio         = "radio"
	TypeList          = "list"
	TypeCard          = "card"
	TypeDialpadButton = "dialpad_button"
	TypeView          = "view"
	TypeRoot          = "root"
)

type classRule struct {
	substrings []string
	typ        string
}

// Evaluated in order, first match wins. "ImageButton" must hit the
// Button rule before ImageView is considered.
var classRules = []classRule{
	{[]string{"Button"}, TypeButton},
	{[]string{"EditText"}, TypeInput},
	{[]string{"TextView"}, TypeText},
	{[]string{"ImageView"}, TypeImage},
	{[]string{"CheckBox"}, TypeCheckbox},
	{[]string{"RadioButton"}, TypeRadio},
	{[]string{"RecyclerView", "ListView"}, TypeList},
	{[]string{"CardView"}, TypeCard},
}

var dialpadTokens = []string{
	"one", "two", "three", "four", "five", "six",
	"seven", "eight", "nine", "zero", "star", "pound",
}

// Classify maps a raw node to its semantic element type
func Classify(n *RawNode) string {
	for _, rule := range classRules {
		for _, s := range rule.substrings {
			if strings.Contains(n.Class, s) {
				return rule.typ
			}
		}
	}

	if n.ResourceID != "" {
		for _, tok := range dialpadTokens {
			if strings.Contains(n.ResourceID, tok) {
				return TypeDialpadButton
			}
		}
	}

	return TypeView
}
