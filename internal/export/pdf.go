package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var mutedText = &props.Color{Red: 90, Green: 90, Blue: 90}

// GeneratePDF renders the summary as a one-page A4 PDF.
func GeneratePDF(s Summary) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	addTitle(m, s)
	for _, sec := range s.Sections() {
		addSection(m, sec)
	}
	addDisclaimer(m)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

func addTitle(m core.Maroto, s Summary) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(s.Title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
		row.New(8).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("Date: %s", s.GeneratedAt.Format("2006-01-02")), props.Text{
					Size:  9,
					Align: align.Right,
					Color: mutedText,
				}),
			),
		),
	)
}

func addSection(m core.Maroto, sec Section) {
	headerCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}

	m.AddRows(row.New(4))
	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New(sec.Title, props.Text{Size: 11, Style: fontstyle.Bold, Left: 2}),
			).WithStyle(headerCell),
		),
	)

	for _, f := range sec.Fields {
		m.AddRows(
			row.New(6).Add(
				col.New(5).Add(
					text.New(f.Label+":", props.Text{Size: 9, Color: mutedText, Left: 2}),
				),
				col.New(7).Add(
					text.New(f.Value, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
				),
			),
		)
	}
}

func addDisclaimer(m core.Maroto) {
	m.AddRows(row.New(6))
	for _, line := range Disclaimer {
		m.AddRows(
			row.New(5).Add(
				col.New(12).Add(
					text.New(line, props.Text{Size: 8, Style: fontstyle.Italic, Color: mutedText}),
				),
			),
		)
	}
}
