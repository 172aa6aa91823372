// Package dom holds the retained element tree the views mutate. It is
// the render boundary of the client: handlers write text, visibility and
// attributes here, and a front-end (console, tests) reads them back.
// All mutation happens on the app run loop.
package dom

// Element kinds used by the views.
const (
	KindPage       = "page"
	KindMenuButton = "menu-button"
	KindListItem   = "list-item"
	KindAnimation  = "animation"
)

type Element struct {
	ID       string
	Kind     string
	Text     string
	Visible  bool
	Disabled bool
	Attrs    map[string]string
	Children []*Element
}

func (e *Element) Attr(key string) string {
	if e.Attrs == nil {
		return ""
	}
	return e.Attrs[key]
}

func (e *Element) SetAttr(key, value string) {
	if e.Attrs == nil {
		e.Attrs = map[string]string{}
	}
	e.Attrs[key] = value
}

type Document struct {
	elems map[string]*Element
	order []string
}

func NewDocument() *Document {
	return &Document{elems: map[string]*Element{}}
}

// Add registers a new top-level element. Re-adding an existing id
// returns the existing element unchanged.
func (d *Document) Add(id, kind string, visible bool) *Element {
	if e, ok := d.elems[id]; ok {
		return e
	}
	e := &Element{ID: id, Kind: kind, Visible: visible}
	d.elems[id] = e
	d.order = append(d.order, id)
	return e
}

// Get returns nil for unknown ids; callers null-check like the original.
func (d *Document) Get(id string) *Element {
	return d.elems[id]
}

// ByKind returns registered elements of the given kind in insertion
// order.
func (d *Document) ByKind(kind string) []*Element {
	var out []*Element
	for _, id := range d.order {
		if e := d.elems[id]; e != nil && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// SetText is a no-op for unknown ids.
func (d *Document) SetText(id, text string) {
	if e := d.elems[id]; e != nil {
		e.Text = text
	}
}

func (d *Document) Text(id string) string {
	if e := d.elems[id]; e != nil {
		return e.Text
	}
	return ""
}

func (d *Document) Show(id string) {
	if e := d.elems[id]; e != nil {
		e.Visible = true
	}
}

func (d *Document) Hide(id string) {
	if e := d.elems[id]; e != nil {
		e.Visible = false
	}
}

// Visible reports whether id exists and is currently shown.
func (d *Document) Visible(id string) bool {
	e := d.elems[id]
	return e != nil && e.Visible
}

func (d *Document) SetAttr(id, key, value string) {
	if e := d.elems[id]; e != nil {
		e.SetAttr(key, value)
	}
}

func (d *Document) Attr(id, key string) string {
	if e := d.elems[id]; e != nil {
		return e.Attr(key)
	}
	return ""
}

func (d *Document) SetDisabled(id string, disabled bool) {
	if e := d.elems[id]; e != nil {
		e.Disabled = disabled
	}
}

func (d *Document) Disabled(id string) bool {
	if e := d.elems[id]; e != nil {
		return e.Disabled
	}
	return false
}

// AppendChild attaches child under parent and registers it for lookup
// by id. Unknown parent drops the child.
func (d *Document) AppendChild(parentID string, child *Element) *Element {
	p := d.elems[parentID]
	if p == nil {
		return nil
	}
	p.Children = append(p.Children, child)
	if child.ID != "" {
		if _, exists := d.elems[child.ID]; !exists {
			d.elems[child.ID] = child
			d.order = append(d.order, child.ID)
		}
	}
	return child
}

// ClearChildren removes parent's children and unregisters their ids.
func (d *Document) ClearChildren(parentID string) {
	p := d.elems[parentID]
	if p == nil {
		return
	}
	for _, c := range p.Children {
		if c.ID != "" {
			d.remove(c.ID)
		}
	}
	p.Children = nil
}

// RemoveChild detaches one child from parent and unregisters it.
func (d *Document) RemoveChild(parentID, childID string) {
	p := d.elems[parentID]
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c.ID == childID {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			d.remove(childID)
			return
		}
	}
}

func (d *Document) remove(id string) {
	if _, ok := d.elems[id]; !ok {
		return
	}
	delete(d.elems, id)
	for i, v := range d.order {
		if v == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Children returns the child elements of parent, or nil.
func (d *Document) Children(parentID string) []*Element {
	if p := d.elems[parentID]; p != nil {
		return p.Children
	}
	return nil
}
