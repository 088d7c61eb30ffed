package info

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
)

const (
	SubstanceNotFound = "The substance you entered does not exist! Try a different name."
	FetchFailed       = "An error occurred while trying to fetch data!"
	Footer            = "Please use drugs responsibly"

	effectIndexURL  = "https://www.effectindex.com/"
	combinationsURL = "https://wiki.tripsit.me/images/3/3a/Combo_2.png"
)

// substanceReply карточка вещества. Поля без данных не выводятся
func substanceReply(s *domain.Substance, now time.Time) domain.Reply {
	reply := domain.Reply{
		Kind:      domain.ReplyDefault,
		Title:     s.Name,
		Footer:    Footer,
		ImageURL:  s.ImageURL,
		Timestamp: &now,
	}

	if class := classText(s); class != "" {
		reply.Fields = append(reply.Fields, domain.Field{Name: "🔭 Class", Value: class, Inline: true})
	}
	if s.AddictionPotential != "" {
		reply.Fields = append(reply.Fields, domain.Field{Name: "⚠️ Addiction Potential", Value: s.AddictionPotential})
	}
	if doses := dosagesText(s.Routes); doses != "" {
		reply.Fields = append(reply.Fields, domain.Field{Name: "⚖️ Dosages", Value: doses, Inline: true})
	}
	if durations := durationText(s.Routes); durations != "" {
		reply.Fields = append(reply.Fields, domain.Field{Name: "🕑 Duration", Value: durations, Inline: true})
	}
	if tolerance := toleranceText(s.Tolerance); tolerance != "" {
		reply.Fields = append(reply.Fields, domain.Field{Name: "📈 Tolerance", Value: tolerance})
	}

	var links []string
	if s.URL != "" {
		links = append(links, fmt.Sprintf("[PsychonautWiki](%s)", s.URL))
	}
	links = append(links,
		fmt.Sprintf("[Effect Index](%s)", effectIndexURL),
		fmt.Sprintf("[Drug Combinations](%s)", combinationsURL),
	)
	reply.Fields = append(reply.Fields, domain.Field{Name: "🌐 Links", Value: strings.Join(links, " - ")})

	return reply
}

func classText(s *domain.Substance) string {
	var lines []string
	if len(s.ChemicalClass) > 0 {
		lines = append(lines, "**Chemical:** "+s.ChemicalClass[0])
	}
	if len(s.PsychoactiveClass) > 0 {
		lines = append(lines, "**Psychoactive:** "+s.PsychoactiveClass[0])
	}
	return strings.Join(lines, "\n")
}

func dosagesText(routes []domain.RouteInfo) string {
	var b strings.Builder
	for _, route := range routes {
		d := route.Dose
		if d == nil {
			continue
		}
		fmt.Fprintf(&b, "__(%s)__\n", route.Name)
		writeValue(&b, "Threshold", d.Threshold, d.Units)
		writeRange(&b, "Light", d.Light, d.Units)
		writeRange(&b, "Common", d.Common, d.Units)
		writeRange(&b, "Strong", d.Strong, d.Units)
		writeValue(&b, "Heavy", d.Heavy, d.Units)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func durationText(routes []domain.RouteInfo) string {
	var b strings.Builder
	for _, route := range routes {
		d := route.Duration
		if d == nil {
			continue
		}
		fmt.Fprintf(&b, "__(%s)__\n", route.Name)
		writePhase(&b, "Onset", d.Onset)
		writePhase(&b, "Comeup", d.Comeup)
		writePhase(&b, "Peak", d.Peak)
		writePhase(&b, "Offset", d.Offset)
		writePhase(&b, "Afterglow", d.Afterglow)
		writePhase(&b, "Total", d.Total)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func toleranceText(t *domain.Tolerance) string {
	if t == nil {
		return ""
	}
	var lines []string
	if t.Full != "" {
		lines = append(lines, "**Full:** "+t.Full)
	}
	if t.Half != "" {
		lines = append(lines, "**Half:** "+t.Half)
	}
	if t.Zero != "" {
		lines = append(lines, "**Zero:** "+t.Zero)
	}
	return strings.Join(lines, "\n")
}

func writeValue(b *strings.Builder, label string, v *float64, units string) {
	if v == nil {
		return
	}
	fmt.Fprintf(b, "**%s:** %s%s\n", label, number(*v), units)
}

func writeRange(b *strings.Builder, label string, r *domain.Range, units string) {
	if r.IsEmpty() {
		return
	}
	fmt.Fprintf(b, "**%s:** %s%s\n", label, bounds(r.Min, r.Max), units)
}

func writePhase(b *strings.Builder, label string, p *domain.Phase) {
	if p == nil || (p.Min == nil && p.Max == nil) {
		return
	}
	fmt.Fprintf(b, "**%s:** %s %s\n", label, bounds(p.Min, p.Max), p.Units)
}

func bounds(lo, hi *float64) string {
	switch {
	case lo != nil && hi != nil:
		return number(*lo) + " - " + number(*hi)
	case lo != nil:
		return number(*lo) + "+"
	default:
		return "up to " + number(*hi)
	}
}

// number не больше двух знаков после точки, без хвостовых нулей
func number(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}
