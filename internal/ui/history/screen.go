// Package history lists completed workouts.
package history

import (
	"context"
	"fmt"
	"log"
	"time"

	"fittrack/internal/core/model"
	"fittrack/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// EmptyText is shown when nothing has been completed.
const EmptyText = "No workouts completed yet!"

const timeLayout = "Jan 2, 2006 3:04 PM"

// Reader loads stored history.
type Reader interface {
	Recent(ctx context.Context) ([]model.HistoryRecord, error)
	Summary(ctx context.Context) (model.HistorySummary, error)
}

// Screen shows completed workouts newest first.
type Screen struct {
	reader   Reader
	logger   *log.Logger
	location *time.Location
	records  []model.HistoryRecord
	summary  *widget.Label
	empty    *widget.Label
	list     *widget.List
	back     *widget.Button
	content  fyne.CanvasObject
	run      func(func())
}

// New builds the history screen. Call Reload to populate it.
func New(reader Reader, onBack func()) *Screen {
	screen := &Screen{
		reader:   reader,
		logger:   log.Default(),
		location: time.Local,
		run:      func(job func()) { go job() },
	}

	screen.summary = widget.NewLabel("")
	screen.empty = widget.NewLabelWithStyle(EmptyText, fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	screen.empty.Hide()

	screen.list = widget.NewList(
		func() int { return len(screen.records) },
		func() fyne.CanvasObject {
			icon := widget.NewIcon(nil)
			title := widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
			date := widget.NewLabel("")
			return container.NewBorder(nil, nil, icon, nil, container.NewVBox(title, date))
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			record := screen.records[id]
			row := item.(*fyne.Container)
			texts := row.Objects[0].(*fyne.Container)
			texts.Objects[0].(*widget.Label).SetText(record.Title)
			texts.Objects[1].(*widget.Label).SetText(screen.formatTime(record.CompletedAt))
			row.Objects[1].(*widget.Icon).SetResource(resources.WorkoutIcon(record.Title))
		},
	)

	screen.back = widget.NewButton("Back", func() {
		if onBack != nil {
			onBack()
		}
	})

	header := container.NewVBox(
		widget.NewLabelWithStyle("Workout History", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		screen.summary,
	)
	screen.content = container.NewBorder(header, screen.back, nil, nil, container.NewStack(screen.list, container.NewCenter(screen.empty)))
	return screen
}

// Content returns the screen's root object.
func (screen *Screen) Content() fyne.CanvasObject {
	return screen.content
}

// Reload reads the history in the background and redraws.
func (screen *Screen) Reload(ctx context.Context) {
	screen.summary.SetText("Loading...")
	screen.run(func() {
		records, err := screen.reader.Recent(ctx)
		var summary model.HistorySummary
		if err == nil {
			summary, err = screen.reader.Summary(ctx)
		}
		fyne.Do(func() { screen.show(records, summary, err) })
	})
}

func (screen *Screen) show(records []model.HistoryRecord, summary model.HistorySummary, err error) {
	if err != nil {
		screen.logger.Printf("history: load: %v", err)
		records = nil
		screen.summary.SetText("Could not load workout history.")
	} else {
		screen.summary.SetText(screen.summaryText(summary))
	}

	screen.records = records
	if len(records) == 0 {
		screen.empty.Show()
		screen.list.Hide()
	} else {
		screen.empty.Hide()
		screen.list.Show()
	}
	screen.list.Refresh()
}

func (screen *Screen) summaryText(summary model.HistorySummary) string {
	switch summary.Total {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("1 workout completed. Last: %s", screen.formatTime(summary.LastCompletedAt))
	default:
		return fmt.Sprintf("%d workouts completed. Last: %s", summary.Total, screen.formatTime(summary.LastCompletedAt))
	}
}

func (screen *Screen) formatTime(value time.Time) string {
	return value.In(screen.location).Format(timeLayout)
}
