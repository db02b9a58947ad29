package uidump

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		node RawNode
		want string
	}{
		{"button", RawNode{Class: "android.widget.Button"}, "button"},
		{"image button prefers button", RawNode{Class: "android.widget.ImageButton"}, "button"},
		{"radio button hits button rule first", RawNode{Class: "android.widget.RadioButton"}, "button"},
		{"edit text", RawNode{Class: "android.widget.EditText"}, "input"},
		{"autocomplete", RawNode{Class: "android.widget.AutoCompleteTextView"}, "text"},
		{"text view", RawNode{Class: "android.widget.TextView"}, "text"},
		{"image view", RawNode{Class: "android.widget.ImageView"}, "image"},
		{"checkbox", RawNode{Class: "android.widget.CheckBox"}, "checkbox"},
		{"recycler", RawNode{Class: "androidx.recyclerview.widget.RecyclerView"}, "list"},
		{"list view", RawNode{Class: "android.widget.ListView"}, "list"},
		{"card", RawNode{Class: "androidx.cardview.widget.CardView"}, "card"},
		{"dialpad", RawNode{Class: "android.widget.FrameLayout", ResourceID: "com.android.dialer:id/seven"}, "dialpad_button"},
		{"dialpad pound", RawNode{Class: "android.view.View", ResourceID: "com.android.dialer:id/pound"}, "dialpad_button"},
		{"class rule beats dialpad", RawNode{Class: "android.widget.TextView", ResourceID: "com.android.dialer:id/seven"}, "text"},
		{"plain view", RawNode{Class: "android.view.View", ResourceID: "com.example:id/header"}, "view"},
		{"empty", RawNode{}, "view"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(&tt.node))
		})
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "seven", (&RawNode{ResourceID: "com.android.dialer:id/seven"}).ShortID())
	assert.Equal(t, "plain", (&RawNode{ResourceID: "plain"}).ShortID())
	assert.Equal(t, "c", (&RawNode{ResourceID: "a/b/c"}).ShortID())
}
