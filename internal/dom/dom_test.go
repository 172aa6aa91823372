package dom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddIsIdempotent(t *testing.T) {
	d := NewDocument()
	a := d.Add("x", KindPage, true)
	b := d.Add("x", KindListItem, false)

	require.Same(t, a, b)
	require.Equal(t, KindPage, b.Kind)
	require.True(t, d.Visible("x"))
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	d := NewDocument()

	d.SetText("nope", "hi")
	d.Show("nope")
	d.SetAttr("nope", "k", "v")
	d.SetDisabled("nope", true)

	require.Nil(t, d.Get("nope"))
	require.Equal(t, "", d.Text("nope"))
	require.False(t, d.Visible("nope"))
	require.False(t, d.Disabled("nope"))
}

func TestByKindKeepsInsertionOrder(t *testing.T) {
	d := NewDocument()
	d.Add("b", KindPage, true)
	d.Add("a", KindPage, true)
	d.Add("m", KindMenuButton, true)

	pages := d.ByKind(KindPage)
	require.Len(t, pages, 2)
	require.Equal(t, "b", pages[0].ID)
	require.Equal(t, "a", pages[1].ID)
}

func TestChildrenRegisterAndUnregister(t *testing.T) {
	d := NewDocument()
	d.Add("list", KindListItem, true)

	d.AppendChild("list", &Element{ID: "c1", Kind: KindListItem})
	d.AppendChild("list", &Element{ID: "c2", Kind: KindListItem})
	require.NotNil(t, d.Get("c1"))
	require.Len(t, d.Children("list"), 2)

	d.RemoveChild("list", "c1")
	require.Nil(t, d.Get("c1"))
	require.Len(t, d.Children("list"), 1)

	d.ClearChildren("list")
	require.Nil(t, d.Get("c2"))
	require.Empty(t, d.Children("list"))
}

func TestAppendChildUnknownParentDropsChild(t *testing.T) {
	d := NewDocument()
	require.Nil(t, d.AppendChild("nope", &Element{ID: "c1"}))
	require.Nil(t, d.Get("c1"))
}
