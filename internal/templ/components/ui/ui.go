// Package ui holds small building blocks shared by page components.
package ui

import (
	"context"
	"io"

	"github.com/a-h/templ"
	twmerge "github.com/Oudwins/tailwind-merge-go"
)

const (
	inputBase    = "block w-full rounded-md border border-gray-300 px-3 py-2 text-sm shadow-sm focus:border-indigo-500 focus:outline-none focus:ring-1 focus:ring-indigo-500"
	inputInvalid = "border-red-500 focus:border-red-500 focus:ring-red-500"

	buttonBase    = "inline-flex items-center justify-center rounded-md px-4 py-2 text-sm font-semibold focus:outline-none focus:ring-2 focus:ring-offset-2 disabled:cursor-not-allowed disabled:opacity-60"
	buttonPrimary = "bg-indigo-600 text-white hover:bg-indigo-500 focus:ring-indigo-500"
	buttonGhost   = "bg-transparent px-2 py-1 text-gray-500 hover:text-gray-700 focus:ring-gray-300"
)

// InputClass returns the classes for a text input, switching the border
// colors when the field has an error. extra wins over the defaults.
func InputClass(invalid bool, extra ...string) string {
	parts := []string{inputBase}
	if invalid {
		parts = append(parts, inputInvalid)
	}
	return twmerge.Merge(append(parts, extra...)...)
}

// ButtonVariant selects a button style.
type ButtonVariant int

const (
	ButtonPrimary ButtonVariant = iota
	ButtonGhost
)

// ButtonClass returns the classes for a button variant merged with extra.
func ButtonClass(v ButtonVariant, extra ...string) string {
	variant := buttonPrimary
	if v == ButtonGhost {
		variant = buttonGhost
	}
	return twmerge.Merge(append([]string{buttonBase, variant}, extra...)...)
}

// Icon names
const (
	IconEye       = "eye"
	IconEyeSlash  = "eye-slash"
	IconArrowLeft = "arrow-left"
	IconCheck     = "check-circle"
	IconUser      = "user"
	IconEnvelope  = "envelope"
	IconLock      = "lock-closed"
)

// Heroicons outline paths.
var iconPaths = map[string]string{
	IconEye: `<path stroke-linecap="round" stroke-linejoin="round" d="M2.036 12.322a1.012 1.012 0 0 1 0-.639C3.423 7.51 7.36 4.5 12 4.5c4.638 0 8.573 3.007 9.963 7.178.07.207.07.431 0 .639C20.577 16.49 16.64 19.5 12 19.5c-4.638 0-8.573-3.007-9.963-7.178Z"/>` +
		`<path stroke-linecap="round" stroke-linejoin="round" d="M15 12a3 3 0 1 1-6 0 3 3 0 0 1 6 0Z"/>`,
	IconEyeSlash:  `<path stroke-linecap="round" stroke-linejoin="round" d="M3.98 8.223A10.477 10.477 0 0 0 1.934 12C3.226 16.338 7.244 19.5 12 19.5c.993 0 1.953-.138 2.863-.395M6.228 6.228A10.451 10.451 0 0 1 12 4.5c4.756 0 8.773 3.162 10.065 7.498a10.522 10.522 0 0 1-4.293 5.774M6.228 6.228 3 3m3.228 3.228 3.65 3.65m7.894 7.894L21 21m-3.228-3.228-3.65-3.65m0 0a3 3 0 1 0-4.243-4.243m4.242 4.242L9.88 9.88"/>`,
	IconArrowLeft: `<path stroke-linecap="round" stroke-linejoin="round" d="M10.5 19.5 3 12m0 0 7.5-7.5M3 12h18"/>`,
	IconCheck:     `<path stroke-linecap="round" stroke-linejoin="round" d="M9 12.75 11.25 15 15 9.75M21 12a9 9 0 1 1-18 0 9 9 0 0 1 18 0Z"/>`,
	IconUser:      `<path stroke-linecap="round" stroke-linejoin="round" d="M15.75 6a3.75 3.75 0 1 1-7.5 0 3.75 3.75 0 0 1 7.5 0ZM4.501 20.118a7.5 7.5 0 0 1 14.998 0A17.933 17.933 0 0 1 12 21.75c-2.676 0-5.216-.584-7.499-1.632Z"/>`,
	IconEnvelope:  `<path stroke-linecap="round" stroke-linejoin="round" d="M21.75 6.75v10.5a2.25 2.25 0 0 1-2.25 2.25h-15a2.25 2.25 0 0 1-2.25-2.25V6.75m19.5 0A2.25 2.25 0 0 0 19.5 4.5h-15a2.25 2.25 0 0 0-2.25 2.25m19.5 0v.243a2.25 2.25 0 0 1-1.07 1.916l-7.5 4.615a2.25 2.25 0 0 1-2.36 0L3.32 8.91a2.25 2.25 0 0 1-1.07-1.916V6.75"/>`,
	IconLock:      `<path stroke-linecap="round" stroke-linejoin="round" d="M16.5 10.5V6.75a4.5 4.5 0 1 0-9 0v3.75m-.75 11.25h10.5a2.25 2.25 0 0 0 2.25-2.25v-6.75a2.25 2.25 0 0 0-2.25-2.25H6.75a2.25 2.25 0 0 0-2.25 2.25v6.75a2.25 2.25 0 0 0 2.25 2.25Z"/>`,
}

// Icon renders a decorative 24px outline icon. Unknown names render nothing.
func Icon(name string, class ...string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		path, ok := iconPaths[name]
		if !ok {
			return nil
		}
		_, err := io.WriteString(w,
			`<svg xmlns="http://www.w3.org/2000/svg" fill="none" viewBox="0 0 24 24" stroke-width="1.5" stroke="currentColor" aria-hidden="true" class="`+
				templ.EscapeString(twmerge.Merge(append([]string{"h-5 w-5"}, class...)...))+`">`+path+`</svg>`)
		return err
	})
}
