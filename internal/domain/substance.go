package domain

// Range значение от/до, любое из полей может отсутствовать
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r *Range) IsEmpty() bool {
	return r == nil || (r.Min == nil && r.Max == nil)
}

// DoseThresholds пороги дозировки для одного способа употребления
type DoseThresholds struct {
	Units     string   `json:"units,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	Light     *Range   `json:"light,omitempty"`
	Common    *Range   `json:"common,omitempty"`
	Strong    *Range   `json:"strong,omitempty"`
	Heavy     *float64 `json:"heavy,omitempty"`
}

// Phase длительность фазы действия
type Phase struct {
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
	Units string   `json:"units,omitempty"`
}

type Duration struct {
	Onset     *Phase `json:"onset,omitempty"`
	Comeup    *Phase `json:"comeup,omitempty"`
	Peak      *Phase `json:"peak,omitempty"`
	Offset    *Phase `json:"offset,omitempty"`
	Afterglow *Phase `json:"afterglow,omitempty"`
	Total     *Phase `json:"total,omitempty"`
}

// RouteInfo данные по одному способу употребления
type RouteInfo struct {
	Name     string          `json:"name"`
	Dose     *DoseThresholds `json:"dose,omitempty"`
	Duration *Duration       `json:"duration,omitempty"`
}

type Tolerance struct {
	Full string `json:"full,omitempty"`
	Half string `json:"half,omitempty"`
	Zero string `json:"zero,omitempty"`
}

// Substance справочная запись о веществе
type Substance struct {
	Name               string      `json:"name"`
	URL                string      `json:"url,omitempty"`
	ChemicalClass      []string    `json:"chemical_class,omitempty"`
	PsychoactiveClass  []string    `json:"psychoactive_class,omitempty"`
	AddictionPotential string      `json:"addiction_potential,omitempty"`
	Routes             []RouteInfo `json:"routes,omitempty"`
	Tolerance          *Tolerance  `json:"tolerance,omitempty"`
	ImageURL           string      `json:"image_url,omitempty"`
}
