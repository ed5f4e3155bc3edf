package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/valuer/internal/form"
	"github.com/roach88/valuer/internal/valuation"
)

// Menu entries, in display order.
const (
	actionRecipient = "Set recipient"
	actionAdd       = "Add item"
	actionEdit      = "Edit item"
	actionRemove    = "Remove item"
	actionTotals    = "Show totals"
	actionDone      = "Done"
)

var menu = []string{actionRecipient, actionAdd, actionEdit, actionRemove, actionTotals, actionDone}

// Editor walks the operator through editing the draft. Every change goes
// through the form model, so it is persisted as soon as it is made.
type Editor struct {
	model    *form.Model
	driver   Driver
	currency string
}

// NewEditor creates an editor over model. currency is only used for display.
func NewEditor(model *form.Model, driver Driver, currency string) *Editor {
	if currency == "" {
		currency = "NOK"
	}
	return &Editor{model: model, driver: driver, currency: currency}
}

// Run shows the menu until the operator picks Done or aborts.
// Rejected mutations are reported and the loop continues.
func (e *Editor) Run(ctx context.Context) error {
	for {
		idx, err := e.driver.Select(ctx, SelectConfig{Message: "What next?", Options: menu})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(menu) {
			continue
		}

		switch menu[idx] {
		case actionRecipient:
			err = e.editRecipient(ctx)
		case actionAdd:
			err = e.addItem(ctx)
		case actionEdit:
			err = e.editItem(ctx)
		case actionRemove:
			err = e.removeItem(ctx)
		case actionTotals:
			err = e.showTotals(ctx)
		case actionDone:
			return nil
		}

		if err != nil {
			if !valuation.IsValidationError(err) {
				return err
			}
			if err := e.driver.Info(ctx, notice(err)); err != nil {
				return err
			}
		}
	}
}

func (e *Editor) editRecipient(ctx context.Context) error {
	req := e.model.Request()

	name, err := e.driver.Input(ctx, InputConfig{Message: "Recipient", Default: req.RecipientName})
	if err != nil {
		return err
	}
	email, err := e.driver.Input(ctx, InputConfig{Message: "Recipient email", Default: req.RecipientEmail})
	if err != nil {
		return err
	}

	if name == req.RecipientName && email == req.RecipientEmail {
		return nil
	}
	return e.model.SetRecipientContact(ctx, name, email)
}

func (e *Editor) addItem(ctx context.Context) error {
	it, err := e.model.AddItem(ctx)
	if err != nil {
		return err
	}
	return e.editFields(ctx, it)
}

func (e *Editor) editItem(ctx context.Context) error {
	it, ok, err := e.pickItem(ctx, "Edit which item?")
	if err != nil || !ok {
		return err
	}
	return e.editFields(ctx, it)
}

func (e *Editor) editFields(ctx context.Context, it valuation.Item) error {
	current := map[valuation.Field]string{
		valuation.FieldName:        it.Name,
		valuation.FieldPrice:       it.UnitPrice,
		valuation.FieldDescription: it.Description,
	}
	for _, f := range valuation.Fields {
		cfg := InputConfig{Message: fieldLabel(f), Default: current[f]}
		if f == valuation.FieldPrice {
			cfg.Help = "Amount without VAT, e.g. 1250.00. Leave blank for zero."
			cfg.Validator = validatePrice
		}
		v, err := e.driver.Input(ctx, cfg)
		if err != nil {
			return err
		}
		if v == current[f] {
			continue
		}
		if err := e.model.UpdateItem(ctx, it.ID, f, v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Editor) removeItem(ctx context.Context) error {
	it, ok, err := e.pickItem(ctx, "Remove which item?")
	if err != nil || !ok {
		return err
	}
	idx := e.model.Request().IndexOf(it.ID)
	yes, err := e.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Remove %q?", itemLabel(it, idx))})
	if err != nil || !yes {
		return err
	}
	return e.model.RemoveItem(ctx, it.ID)
}

func (e *Editor) showTotals(ctx context.Context) error {
	totals, err := valuation.ComputeTotals(e.model.Request().Items)
	if err != nil {
		return e.driver.Info(ctx, err.Error())
	}
	lines := []string{
		fmt.Sprintf("Netto: %s %s", valuation.FormatAmount(totals.Netto), e.currency),
		fmt.Sprintf("+ VAT (25%%): %s %s", valuation.FormatAmount(totals.VAT), e.currency),
		fmt.Sprintf("Total: %s %s", valuation.FormatAmount(totals.Total), e.currency),
	}
	return e.driver.Info(ctx, strings.Join(lines, "\n"))
}

// pickItem asks for an item; ok is false when the operator backs out.
func (e *Editor) pickItem(ctx context.Context, msg string) (valuation.Item, bool, error) {
	items := e.model.Request().Items
	options := make([]string, 0, len(items)+1)
	for i, it := range items {
		options = append(options, itemLabel(it, i))
	}
	options = append(options, "Back")

	idx, err := e.driver.Select(ctx, SelectConfig{Message: msg, Options: options})
	if err != nil {
		return valuation.Item{}, false, err
	}
	if idx < 0 || idx >= len(items) {
		return valuation.Item{}, false, nil
	}
	return items[idx], true, nil
}

func itemLabel(it valuation.Item, index int) string {
	name := strings.TrimSpace(it.Name)
	if name == "" {
		name = fmt.Sprintf("Item %d", index+1)
	}
	if p := strings.TrimSpace(it.UnitPrice); p != "" {
		return fmt.Sprintf("%d. %s (%s)", index+1, name, p)
	}
	return fmt.Sprintf("%d. %s", index+1, name)
}

func fieldLabel(f valuation.Field) string {
	switch f {
	case valuation.FieldPrice:
		return "Price"
	case valuation.FieldDescription:
		return "Description"
	default:
		return "Name"
	}
}

func validatePrice(s string) error {
	_, err := valuation.ParsePrice(s)
	return err
}

func notice(err error) string {
	var ve *valuation.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}
