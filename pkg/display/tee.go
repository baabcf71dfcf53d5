package display

import "errors"

// Tee mirrors every call to all of its displays. A failing display does not stop the others.
type Tee []Display

var _ Display = Tee(nil)

// Render writes text at row, col on every display.
func (t Tee) Render(text string, row, col int) error {
	var errs []error
	for _, d := range t {
		errs = append(errs, d.Render(text, row, col))
	}
	return errors.Join(errs...)
}

// Clear blanks every display.
func (t Tee) Clear() error {
	var errs []error
	for _, d := range t {
		errs = append(errs, d.Clear())
	}
	return errors.Join(errs...)
}

// SetBacklight switches the backlight of every display.
func (t Tee) SetBacklight(c Color) error {
	var errs []error
	for _, d := range t {
		errs = append(errs, d.SetBacklight(c))
	}
	return errors.Join(errs...)
}
