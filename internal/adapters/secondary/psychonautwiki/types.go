package psychonautwiki

// graphQLRequest тело POST-запроса к GraphQL эндпоинту
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// SubstancesResponse ответ на запрос substances(query:)
type SubstancesResponse struct {
	Data struct {
		Substances []SubstanceDTO `json:"substances"`
	} `json:"data"`
	Errors []graphQLError `json:"errors,omitempty"`
}

type SubstanceDTO struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Class *struct {
		Chemical     []string `json:"chemical"`
		Psychoactive []string `json:"psychoactive"`
	} `json:"class"`
	Roas               []RoaDTO      `json:"roas"`
	AddictionPotential *string       `json:"addictionPotential"`
	Tolerance          *ToleranceDTO `json:"tolerance"`
	Images             []ImageDTO    `json:"images"`
}

type ImageDTO struct {
	Image string `json:"image"`
}

// RoaDTO route of administration
type RoaDTO struct {
	Name     string       `json:"name"`
	Dose     *DoseDTO     `json:"dose"`
	Duration *DurationDTO `json:"duration"`
}

type RangeDTO struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type DoseDTO struct {
	Units     *string   `json:"units"`
	Threshold *float64  `json:"threshold"`
	Heavy     *float64  `json:"heavy"`
	Common    *RangeDTO `json:"common"`
	Light     *RangeDTO `json:"light"`
	Strong    *RangeDTO `json:"strong"`
}

type PhaseDTO struct {
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Units *string  `json:"units"`
}

type DurationDTO struct {
	Onset     *PhaseDTO `json:"onset"`
	Comeup    *PhaseDTO `json:"comeup"`
	Peak      *PhaseDTO `json:"peak"`
	Offset    *PhaseDTO `json:"offset"`
	Afterglow *PhaseDTO `json:"afterglow"`
	Total     *PhaseDTO `json:"total"`
}

type ToleranceDTO struct {
	Full *string `json:"full"`
	Half *string `json:"half"`
	Zero *string `json:"zero"`
}
