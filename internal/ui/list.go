package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/spotx/internal/models"
)

var _ list.Item = playableItem{}

// playableItem wraps [models.Playable] to implement [list.Item].
type playableItem struct {
	item models.Playable
}

func (i playableItem) FilterValue() string { return i.item.Name() }
func (i playableItem) Title() string {
	if i.item.IsNone() {
		return "(unavailable)"
	}
	return i.item.Name()
}
func (i playableItem) Description() string {
	if i.item.IsNone() {
		return ""
	}
	return fmt.Sprintf("%s • %s • %s", i.item.Creator(), i.item.Kind, models.FormatDuration(i.item.DurationMS()))
}

func queueItems(q models.Queue) []list.Item {
	items := make([]list.Item, len(q.Queue))
	for i, p := range q.Queue {
		items[i] = playableItem{item: p}
	}
	return items
}
