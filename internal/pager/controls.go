package pager

// ControlID identifies a navigation control on the rendered message.
type ControlID string

const (
	ControlNavigate ControlID = "navigate"
	ControlFirst    ControlID = "first"
	ControlPrev     ControlID = "prev"
	ControlNext     ControlID = "next"
	ControlLast     ControlID = "last"
	ControlBack     ControlID = "back"
	ControlStop     ControlID = "stop"
)

// ButtonStyle hints how prominently a surface should render a button.
type ButtonStyle string

const (
	StyleDefault ButtonStyle = ""
	StylePrimary ButtonStyle = "primary"
	StyleDanger  ButtonStyle = "danger"
)

// Button is one rendered navigation control.
type Button struct {
	ID       ControlID
	Label    string
	Style    ButtonStyle
	Row      int
	Disabled bool
}

// Controls is the interactive layout attached to an outbound message.
// Select holds the drill-down menu options; an empty Select means the menu
// is absent. Disabled marks the whole layout inert.
type Controls struct {
	Placeholder string
	Select      []Option
	Buttons     []Button
	Disabled    bool
}

type buttonDef struct {
	id    ControlID
	label string
	style ButtonStyle
}

// The control table is static; only presence, row and the disabled flags
// vary with view state.
var (
	paginationDefs = [...]buttonDef{
		{ControlFirst, "⏮", StylePrimary},
		{ControlPrev, "◀", StylePrimary},
		{ControlNext, "▶", StylePrimary},
		{ControlLast, "⏭", StylePrimary},
	}
	backDef = buttonDef{ControlBack, "↩", StylePrimary}
	stopDef = buttonDef{ControlStop, "👍", StyleDefault}
)

// Button returns the button with the given ID, or nil if the layout does
// not include it.
func (c *Controls) Button(id ControlID) *Button {
	if c == nil {
		return nil
	}
	for i := range c.Buttons {
		if c.Buttons[i].ID == id {
			return &c.Buttons[i]
		}
	}
	return nil
}

// disabled returns a copy of the layout with every control disabled.
func (c *Controls) disabled() *Controls {
	if c == nil {
		return nil
	}
	out := &Controls{
		Placeholder: c.Placeholder,
		Select:      c.Select,
		Buttons:     make([]Button, len(c.Buttons)),
		Disabled:    true,
	}
	for i, b := range c.Buttons {
		b.Disabled = true
		out.Buttons[i] = b
	}
	return out
}

// refreshControls recomputes the control layout from the current stack
// state. The buttons are organized one of four ways:
//
//	no pagination, no parent:  STOP
//	no pagination, parent:     BACK STOP
//	pagination, no parent:     FIRST PREV NEXT LAST STOP
//	pagination, parent:        FIRST PREV NEXT LAST STOP / BACK
//
// The drill-down select, when present, always sits on its own row above.
func (v *View) refreshControls() {
	c := &Controls{}

	if v.CanNavigate() {
		c.Placeholder = "Navigate..."
		c.Select = v.options
	}

	backRow := 1
	if v.CanPaginate() {
		onFirst := v.CurrentIndex() == 0
		onLast := v.CurrentIndex()+1 >= v.CurrentSource().MaxPages()
		for _, def := range paginationDefs {
			disabled := false
			switch def.id {
			case ControlFirst, ControlPrev:
				disabled = onFirst
			case ControlNext, ControlLast:
				disabled = onLast
			}
			c.Buttons = append(c.Buttons, Button{
				ID:       def.id,
				Label:    def.label,
				Style:    def.style,
				Row:      1,
				Disabled: disabled,
			})
		}
		backRow = 2
	}

	if v.CanGoBack() {
		c.Buttons = append(c.Buttons, Button{
			ID:    backDef.id,
			Label: backDef.label,
			Style: backDef.style,
			Row:   backRow,
		})
	}

	c.Buttons = append(c.Buttons, Button{
		ID:    stopDef.id,
		Label: stopDef.label,
		Style: stopDef.style,
		Row:   1,
	})

	v.controls = c
}
