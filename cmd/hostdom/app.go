package main

import (
	"strconv"

	"github.com/vango-dev/hostdom/pkg/dom"
)

// counterApp renders a button and a label counting its taps.
func counterApp(doc *dom.Document) error {
	screen := doc.CreateElement("view")
	screen.SetID("screen")
	screen.Style().SetCSSText("flex: 1; padding: 24")

	label := doc.CreateElement("text")
	label.SetID("label")
	count := 0
	labelText := doc.CreateTextNode(tapsLabel(count))
	if err := label.AppendChild(labelText); err != nil {
		return err
	}

	button := doc.CreateElement("button")
	button.SetID("increment")
	button.SetAttribute("accessibilityLabel", "Increment")
	caption := doc.CreateElement("text")
	if err := caption.AppendChild(doc.CreateTextNode("Tap me")); err != nil {
		return err
	}
	if err := button.AppendChild(caption); err != nil {
		return err
	}
	button.AddEventListener(dom.EventClick, dom.ListenerFunc(func(*dom.Event) {
		count++
		labelText.SetData(tapsLabel(count))
	}))

	if err := screen.AppendChild(label); err != nil {
		return err
	}
	if err := screen.AppendChild(button); err != nil {
		return err
	}
	return doc.AppendChild(screen)
}

func tapsLabel(n int) string {
	return "Taps: " + strconv.Itoa(n)
}
