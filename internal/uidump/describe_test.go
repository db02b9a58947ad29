package uidump

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe_Empty(t *testing.T) {
	assert.Equal(t, "No interactive elements found.", Describe(Simplify(nil)))
	assert.Equal(t, "No interactive elements found.", Describe(&Element{Type: "text", Text: "hello", Bounds: "[0,0][1,1]"}))
}

func TestDescribe_SingleButton(t *testing.T) {
	tree := &Element{Type: "button", Text: "OK", Clickable: true, Bounds: "[0,0][10,10]"}
	assert.Equal(t, "Found 1 interactive elements:\n1. \"OK\" button at [0,0][10,10]\n", Describe(tree))
}

func TestDescribe_PreOrderNoDedup(t *testing.T) {
	tree := &Element{
		Type:   "list",
		ID:     "results",
		Bounds: "[0,0][100,100]",
		Children: []*Element{
			{Type: "view", Desc: "Row", ID: "row", Clickable: true, Bounds: "[0,0][100,10]", Children: []*Element{
				{Type: "input", Bounds: "[0,0][50,10]"},
			}},
			{Type: "text", Text: "static", Bounds: "[0,10][100,20]"},
			{Type: "button", Text: "Go", Desc: "Submit", ID: "go", Clickable: true, Bounds: "[0,20][10,30]"},
		},
	}

	want := "Found 4 interactive elements:\n" +
		"1. [results] list at [0,0][100,100]\n" +
		"2. (Row) [row] view at [0,0][100,10]\n" +
		"3. input at [0,0][50,10]\n" +
		"4. \"Go\" (Submit) [go] button at [0,20][10,30]\n"
	assert.Equal(t, want, Describe(tree))
}
