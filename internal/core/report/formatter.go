// Package report renders an analysis text into the branded ClearPath
// credit-report PDF. Layout is deterministic: the same input text always
// classifies and paginates the same way, whether rendered at upload time or
// regenerated later on demand.
package report

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"
)

// US Letter in points.
const (
	pageW = 612.0
	pageH = 792.0

	headerH  = 145.0
	stripeH  = 4.0
	bodyTop  = headerH + 30 // first-page body start
	topMarg  = 60.0         // cursor reset on continuation pages
	leftMarg = 54.0
	rightMrg = 54.0
	contentW = pageW - leftMarg - rightMrg

	footerStripeY = 742.0
	footerReserve = pageH - footerStripeY + 18 // body must stop above this zone

	valueTabX = leftMarg + 150 // fixed tab stop for label:value rows
)

// Brand palette.
var (
	brandDark   = rgb{15, 34, 58}    // header band
	brandAccent = rgb{203, 161, 53}  // stripes, bullets, heading bars
	valueBlue   = rgb{96, 130, 168}  // label:value values
	bodyGray    = rgb{85, 85, 85}    // paragraphs
	finePrint   = rgb{140, 140, 140} // footer disclaimer
)

type rgb struct{ r, g, b int }

const disclaimerLine1 = "ClearPath Financial - Credit Report Analysis. This document is generated for informational purposes only."
const disclaimerLine2 = "It is not legal or financial advice. Results vary; no specific outcome is guaranteed."

type lineKind int

const (
	lineNoise lineKind = iota
	lineBlank
	lineHeading
	lineBullet
	lineLabelValue
	lineParagraph
)

var (
	ruleLineRe = regexp.MustCompile(`^[-=_*~]{3,}$`)
	summaryRe  = regexp.MustCompile(`(?i)^[\s*]*summary[\s*:]*$`)
	exclaimRe  = regexp.MustCompile(`^[A-Za-z]+!$`)
	headingRe  = regexp.MustCompile(`^#{1,6}\s*([A-Z].*)$`)
	bulletRe   = regexp.MustCompile(`^([-*•]|\d+[.)])\s+(.*)$`)
)

// classifyLine decides how one line of analysis text is rendered. Priority
// order matters: noise first, then heading, bullet, label:value, paragraph.
func classifyLine(raw string) (lineKind, string, string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return lineBlank, "", ""
	}
	if ruleLineRe.MatchString(line) || summaryRe.MatchString(line) || exclaimRe.MatchString(line) {
		return lineNoise, "", ""
	}
	if m := headingRe.FindStringSubmatch(line); m != nil {
		return lineHeading, stripEmphasis(m[1]), ""
	}
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		return lineBullet, stripEmphasis(strings.TrimSpace(m[2])), ""
	}
	if strings.Count(line, ":") == 1 {
		parts := strings.SplitN(line, ":", 2)
		label, value := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if label != "" && value != "" {
			return lineLabelValue, stripEmphasis(label), stripEmphasis(value)
		}
	}
	return lineParagraph, stripEmphasis(line), ""
}

// stripEmphasis removes double-asterisk bold markup; the formatter applies
// structural layout only, never inline styling.
func stripEmphasis(s string) string {
	return strings.ReplaceAll(s, "**", "")
}

// Renderer produces the branded report PDF.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

// Render lays out the report and returns the PDF bytes. A missing or empty
// analysis produces a header/footer-only document, not an error.
func (r *Renderer) Render(visitorName, dateLabel, analysis string) ([]byte, error) {
	pdf := r.build(visitorName, dateLabel, analysis)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// build runs the full layout pass. Split from Render so tests can inspect
// page counts without decoding PDF bytes.
func (r *Renderer) build(visitorName, dateLabel, analysis string) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	l := &layout{pdf: pdf}
	l.firstPage(tr(visitorName), tr(dateLabel))

	firstSection := true
	for _, raw := range strings.Split(analysis, "\n") {
		kind, text, value := classifyLine(raw)
		switch kind {
		case lineNoise:
			// dropped entirely
		case lineBlank:
			l.blankGap()
		case lineHeading:
			l.heading(tr(text), firstSection)
			firstSection = false
		case lineBullet:
			l.bullet(tr(text))
		case lineLabelValue:
			l.labelValue(tr(text), tr(value))
		case lineParagraph:
			l.paragraph(tr(text))
		}
	}
	return pdf
}

// layout tracks the running vertical cursor across pages.
type layout struct {
	pdf       *fpdf.Fpdf
	cursor    float64
	pageStart float64 // cursor value at the top of the current page's body
}

func (l *layout) firstPage(visitorName, dateLabel string) {
	l.pdf.AddPage()
	l.drawHeader(visitorName, dateLabel)
	l.drawFooter()
	l.cursor = bodyTop
	l.pageStart = bodyTop
}

func (l *layout) drawHeader(visitorName, dateLabel string) {
	p := l.pdf
	setFill(p, brandDark)
	p.Rect(0, 0, pageW, headerH, "F")
	setFill(p, brandAccent)
	p.Rect(0, 0, pageW, stripeH, "F")
	p.Rect(0, headerH-stripeH, pageW, stripeH, "F")

	p.SetTextColor(255, 255, 255)
	p.SetFont("Helvetica", "B", 22)
	p.Text(leftMarg, 58, "ClearPath Financial")
	p.SetFont("Helvetica", "", 13)
	p.Text(leftMarg, 82, "Credit Report Analysis")
	p.SetFont("Helvetica", "", 10)
	if visitorName != "" {
		p.Text(leftMarg, 112, "Prepared for: "+visitorName)
	}
	if dateLabel != "" {
		p.Text(leftMarg, 126, dateLabel)
	}
}

func (l *layout) drawFooter() {
	p := l.pdf
	setFill(p, brandAccent)
	p.Rect(0, footerStripeY, pageW, 3, "F")

	setText(p, finePrint)
	p.SetFont("Helvetica", "", 7.5)
	centerText(p, disclaimerLine1, 756)
	centerText(p, disclaimerLine2, 766)
}

func centerText(p *fpdf.Fpdf, s string, y float64) {
	w := p.GetStringWidth(s)
	p.Text((pageW-w)/2, y, s)
}

// newBodyPage starts a continuation page: footer only, cursor at the fixed
// top margin.
func (l *layout) newBodyPage() {
	l.pdf.AddPage()
	l.drawFooter()
	l.cursor = topMarg
	l.pageStart = topMarg
}

// ensureRoom guarantees the next drawing of height h stays out of the
// footer reserve zone. Pagination always makes progress, so arbitrarily
// long input can never wedge the layout.
func (l *layout) ensureRoom(h float64) {
	if l.cursor+h > pageH-footerReserve {
		l.newBodyPage()
	}
}

func (l *layout) blankGap() {
	// A blank line only spaces content once something is on the page.
	if l.cursor > l.pageStart {
		l.cursor += 6
	}
}

func (l *layout) heading(title string, first bool) {
	if !first {
		l.cursor += 10
	}
	l.ensureRoom(30)

	p := l.pdf
	setFill(p, brandAccent)
	p.Rect(leftMarg, l.cursor, 4, 14, "F")

	setText(p, brandDark)
	p.SetFont("Helvetica", "B", 13)
	p.Text(leftMarg+10, l.cursor+11, title)

	setDraw(p, brandAccent)
	p.SetLineWidth(0.6)
	p.Line(leftMarg, l.cursor+20, pageW-rightMrg, l.cursor+20)

	l.cursor += 28
}

func (l *layout) bullet(text string) {
	p := l.pdf
	p.SetFont("Helvetica", "", 10)
	lines := p.SplitText(text, contentW-14)

	l.ensureRoom(14)
	setFill(p, brandAccent)
	p.Circle(leftMarg+3, l.cursor+5, 2, "F")

	setText(p, bodyGray)
	for _, ln := range lines {
		l.ensureRoom(14)
		p.Text(leftMarg+14, l.cursor+8, ln)
		l.cursor += 14
	}
	l.cursor += 4
}

func (l *layout) labelValue(label, value string) {
	l.ensureRoom(16)
	p := l.pdf

	setText(p, brandDark)
	p.SetFont("Helvetica", "B", 10)
	p.Text(leftMarg, l.cursor+8, label+":")

	setText(p, valueBlue)
	p.SetFont("Helvetica", "", 10)
	p.Text(valueTabX, l.cursor+8, value)

	l.cursor += 16
}

func (l *layout) paragraph(text string) {
	p := l.pdf
	setText(p, bodyGray)
	p.SetFont("Helvetica", "", 10)
	for _, ln := range p.SplitText(text, contentW) {
		l.ensureRoom(14)
		p.Text(leftMarg, l.cursor+8, ln)
		l.cursor += 14
	}
	l.cursor += 6
}

func setFill(p *fpdf.Fpdf, c rgb) { p.SetFillColor(c.r, c.g, c.b) }
func setText(p *fpdf.Fpdf, c rgb) { p.SetTextColor(c.r, c.g, c.b) }
func setDraw(p *fpdf.Fpdf, c rgb) { p.SetDrawColor(c.r, c.g, c.b) }
