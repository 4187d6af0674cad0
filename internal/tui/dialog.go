package tui

import (
	"slices"
	"strings"

	"github.com/abgdnv/invdash/internal/dashboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// productDialog renders the add/edit form. The controller owns the buffer;
// every edit is pushed to it with SetField.
type productDialog struct {
	mode   dashboard.DialogMode
	inputs []textinput.Model
	focus  int
	err    string
}

func newProductDialog(mode dashboard.DialogMode, buf dashboard.FormBuffer) productDialog {
	d := productDialog{mode: mode, inputs: make([]textinput.Model, len(dashboard.Fields))}
	for i, field := range dashboard.Fields {
		in := newInput(string(field), 0)
		in.SetValue(fieldValue(buf, field))
		d.inputs[i] = in
	}
	d.inputs[0].Focus()
	return d
}

func (d productDialog) field() dashboard.Field {
	return dashboard.Fields[d.focus]
}

func (d productDialog) value() string {
	return d.inputs[d.focus].Value()
}

func (d *productDialog) move(delta int) {
	d.inputs[d.focus].Blur()
	d.focus = (d.focus + delta + len(d.inputs)) % len(d.inputs)
	d.inputs[d.focus].Focus()
}

// focusField moves focus to field, used to point at the field that failed validation.
func (d *productDialog) focusField(field dashboard.Field) {
	if i := slices.Index(dashboard.Fields, field); i >= 0 {
		d.move(i - d.focus)
	}
}

func (d productDialog) update(msg tea.Msg) (productDialog, tea.Cmd) {
	var cmd tea.Cmd
	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
	return d, cmd
}

func (d productDialog) view(saving bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.mode.Title()))
	b.WriteString("\n")
	for i, field := range dashboard.Fields {
		b.WriteString(labelStyle.Render(fieldLabel(field)) + d.inputs[i].View() + "\n")
	}
	switch {
	case saving:
		b.WriteString("\n" + statusStyle.Render("Saving..."))
	case d.err != "":
		b.WriteString("\n" + errorStyle.Render(d.err))
	}
	return dialogStyle.Render(b.String())
}

func fieldValue(buf dashboard.FormBuffer, field dashboard.Field) string {
	switch field {
	case dashboard.FieldName:
		return buf.Name
	case dashboard.FieldPrice:
		return buf.Price
	case dashboard.FieldStock:
		return buf.Stock
	}
	return ""
}

func fieldLabel(field dashboard.Field) string {
	switch field {
	case dashboard.FieldName:
		return "Name"
	case dashboard.FieldPrice:
		return "Price"
	case dashboard.FieldStock:
		return "Stock"
	}
	return string(field)
}
