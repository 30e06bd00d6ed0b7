package main

// Static reference data for the game. Both ends of the wire hold an
// identical copy; question payloads carry it only as a courtesy so the
// client can render without a separate fetch.

var tags = []string{
	"agua_cerca", "montana_cerca", "naturaleza_potente", "caminable",
	"gastronomia", "tranquilidad", "paisajes", "autentica",
	"diferente", "excursiones_faciles",
}

var tagLabels = map[string]string{
	"agua_cerca":          "Agua cerca",
	"montana_cerca":       "Montaña cerca",
	"naturaleza_potente":  "Naturaleza potente",
	"caminable":           "Caminable",
	"gastronomia":         "Gastronomía",
	"tranquilidad":        "Tranquilidad",
	"paisajes":            "Paisajes",
	"autentica":           "Auténtica",
	"diferente":           "Diferente",
	"excursiones_faciles": "Excursiones fáciles",
}

// City tag strengths use the raw 0..2 domain; scoring halves them to 0..1.
type City struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Country string             `json:"country"`
	Tags    map[string]float64 `json:"tags"`
}

var cities = []City{
	{ID: "bilbao", Name: "Bilbao", Country: "España", Tags: map[string]float64{"agua_cerca": 1, "montana_cerca": 2, "naturaleza_potente": 2, "caminable": 2, "gastronomia": 2, "tranquilidad": 1, "paisajes": 2, "autentica": 2, "diferente": 1, "excursiones_faciles": 2}},
	{ID: "a_coruna", Name: "A Coruña", Country: "España", Tags: map[string]float64{"agua_cerca": 2, "montana_cerca": 0, "naturaleza_potente": 2, "caminable": 2, "gastronomia": 2, "tranquilidad": 2, "paisajes": 2, "autentica": 2, "diferente": 1, "excursiones_faciles": 2}},
	{ID: "santander", Name: "Santander", Country: "España", Tags: map[string]float64{"agua_cerca": 2, "montana_cerca": 2, "naturaleza_potente": 2, "caminable": 2, "gastronomia": 2, "tranquilidad": 2, "paisajes": 2, "autentica": 2, "diferente": 1, "excursiones_faciles": 2}},
	{ID: "palma", Name: "Palma de Mallorca", Country: "España", Tags: map[string]float64{"agua_cerca": 2, "montana_cerca": 2, "naturaleza_potente": 2, "caminable": 2, "gastronomia": 1, "tranquilidad": 1, "paisajes": 2, "autentica": 1, "diferente": 1, "excursiones_faciles": 2}},
	{ID: "menorca", Name: "Menorca", Country: "España", Tags: map[string]float64{"agua_cerca": 2, "montana_cerca": 1, "naturaleza_potente": 2, "caminable": 1, "gastronomia": 1, "tranquilidad": 2, "paisajes": 2, "autentica": 2, "diferente": 2, "excursiones_faciles": 2}},
	{ID: "paris", Name: "París", Country: "Francia", Tags: map[string]float64{"agua_cerca": 1, "montana_cerca": 0, "naturaleza_potente": 1, "caminable": 2, "gastronomia": 1, "tranquilidad": 0, "paisajes": 2, "autentica": 1, "diferente": 0, "excursiones_faciles": 1}},
	{ID: "lyon", Name: "Lyon", Country: "Francia", Tags: map[string]float64{"agua_cerca": 1, "montana_cerca": 1, "naturaleza_potente": 1, "caminable": 2, "gastronomia": 2, "tranquilidad": 1, "paisajes": 1, "autentica": 2, "diferente": 1, "excursiones_faciles": 2}},
	{ID: "nantes", Name: "Nantes", Country: "Francia", Tags: map[string]float64{"agua_cerca": 1, "montana_cerca": 0, "naturaleza_potente": 1, "caminable": 2, "gastronomia": 1, "tranquilidad": 2, "paisajes": 1, "autentica": 2, "diferente": 1, "excursiones_faciles": 2}},
	{ID: "toulouse", Name: "Toulouse", Country: "Francia", Tags: map[string]float64{"agua_cerca": 1, "montana_cerca": 2, "naturaleza_potente": 2, "caminable": 2, "gastronomia": 1, "tranquilidad": 2, "paisajes": 2, "autentica": 2, "diferente": 1, "excursiones_faciles": 2}},
	{ID: "estrasburgo", Name: "Estrasburgo", Country: "Francia", Tags: map[string]float64{"agua_cerca": 1, "montana_cerca": 1, "naturaleza_potente": 1, "caminable": 2, "gastronomia": 1, "tranquilidad": 2, "paisajes": 2, "autentica": 1, "diferente": 2, "excursiones_faciles": 2}},
	{ID: "bolonia", Name: "Bolonia", Country: "Italia", Tags: map[string]float64{"agua_cerca": 0, "montana_cerca": 1, "naturaleza_potente": 1, "caminable": 2, "gastronomia": 2, "tranquilidad": 1, "paisajes": 1, "autentica": 2, "diferente": 1, "excursiones_faciles": 2}},
	{ID: "turin", Name: "Turín", Country: "Italia", Tags: map[string]float64{"agua_cerca": 0, "montana_cerca": 2, "naturaleza_potente": 2, "caminable": 2, "gastronomia": 2, "tranquilidad": 2, "paisajes": 2, "autentica": 2, "diferente": 1, "excursiones_faciles": 2}},
	{ID: "ginebra", Name: "Ginebra", Country: "Suiza", Tags: map[string]float64{"agua_cerca": 2, "montana_cerca": 2, "naturaleza_potente": 2, "caminable": 2, "gastronomia": 1, "tranquilidad": 2, "paisajes": 2, "autentica": 1, "diferente": 1, "excursiones_faciles": 2}},
	{ID: "praga", Name: "Praga", Country: "República Checa", Tags: map[string]float64{"agua_cerca": 1, "montana_cerca": 1, "naturaleza_potente": 1, "caminable": 2, "gastronomia": 1, "tranquilidad": 1, "paisajes": 2, "autentica": 1, "diferente": 2, "excursiones_faciles": 2}},
	{ID: "sofia", Name: "Sofía", Country: "Bulgaria", Tags: map[string]float64{"agua_cerca": 0, "montana_cerca": 2, "naturaleza_potente": 2, "caminable": 2, "gastronomia": 1, "tranquilidad": 2, "paisajes": 2, "autentica": 2, "diferente": 2, "excursiones_faciles": 2}},
}

type PickOption struct {
	ID    string             `json:"id"`
	Label string             `json:"label"`
	Icon  string             `json:"icon"`
	Tags  map[string]float64 `json:"tags"`
}

type Question struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	MaxSelect int          `json:"maxSelect"`
	Timer     int          `json:"timer"`
	Options   []PickOption `json:"options"`
}

var mg1Questions = []Question{
	{
		ID: "q1", Text: "Que imagen te atrae mas?", MaxSelect: 2, Timer: 20,
		Options: []PickOption{
			{ID: "agua", Label: "Agua", Icon: "🌊", Tags: map[string]float64{"agua_cerca": 1.0}},
			{ID: "calles_bonitas", Label: "Calles bonitas", Icon: "🏘️", Tags: map[string]float64{"caminable": 0.7, "paisajes": 0.3}},
			{ID: "naturaleza", Label: "Naturaleza", Icon: "🌿", Tags: map[string]float64{"naturaleza_potente": 1.0}},
			{ID: "comida", Label: "Comida", Icon: "🍽️", Tags: map[string]float64{"gastronomia": 1.0}},
		},
	},
	{
		ID: "q2", Text: "Tu ritmo ideal?", MaxSelect: 2, Timer: 20,
		Options: []PickOption{
			{ID: "muy_tranquilo", Label: "Muy tranquilo", Icon: "😌", Tags: map[string]float64{"tranquilidad": 1.0}},
			{ID: "tranquilo_activo", Label: "Tranquilo pero activo", Icon: "🚶", Tags: map[string]float64{"caminable": 0.6, "excursiones_faciles": 0.4}},
			{ID: "explorar_bastante", Label: "Explorar bastante", Icon: "🧭", Tags: map[string]float64{"excursiones_faciles": 0.6, "diferente": 0.4}},
		},
	},
	{
		ID: "q3", Text: "Que te atrae mas?", MaxSelect: 2, Timer: 20,
		Options: []PickOption{
			{ID: "bonito_visual", Label: "Bonito visualmente", Icon: "✨", Tags: map[string]float64{"paisajes": 0.7, "caminable": 0.3}},
			{ID: "autentico", Label: "Auténtico", Icon: "🏺", Tags: map[string]float64{"autentica": 1.0}},
			{ID: "diferente", Label: "Diferente", Icon: "🗺️", Tags: map[string]float64{"diferente": 1.0}},
		},
	},
	{
		ID: "q4", Text: "Que te gustaria tener cerca?", MaxSelect: 2, Timer: 20,
		Options: []PickOption{
			{ID: "mar", Label: "Mar", Icon: "🏖️", Tags: map[string]float64{"agua_cerca": 1.0}},
			{ID: "montana", Label: "Montaña", Icon: "⛰️", Tags: map[string]float64{"montana_cerca": 1.0}},
			{ID: "pueblos", Label: "Pueblos", Icon: "🏡", Tags: map[string]float64{"excursiones_faciles": 0.6, "paisajes": 0.4}},
			{ID: "me_da_igual", Label: "Me da igual", Icon: "🤷", Tags: map[string]float64{}},
		},
	},
	{
		ID: "q5", Text: "Que te ilusiona mas?", MaxSelect: 2, Timer: 20,
		Options: []PickOption{
			{ID: "pasear", Label: "Pasear sin rumbo", Icon: "👣", Tags: map[string]float64{"caminable": 0.7, "paisajes": 0.3}},
			{ID: "paisajes", Label: "Ver paisajes", Icon: "🏞️", Tags: map[string]float64{"paisajes": 1.0}},
			{ID: "comer", Label: "Comer bien", Icon: "🧑‍🍳", Tags: map[string]float64{"gastronomia": 1.0}},
		},
	},
}

func mg1QuestionByID(id string) *Question {
	for i := range mg1Questions {
		if mg1Questions[i].ID == id {
			return &mg1Questions[i]
		}
	}
	return nil
}

var mg2ImportantOptions = []PickOption{
	{ID: "imp_naturaleza", Label: "Naturaleza cerca", Icon: "🌿", Tags: map[string]float64{"naturaleza_potente": 1.0}},
	{ID: "imp_montana", Label: "Montaña cerca", Icon: "⛰️", Tags: map[string]float64{"montana_cerca": 1.0}},
	{ID: "imp_agua", Label: "Agua cerca (mar/lago/río)", Icon: "🌊", Tags: map[string]float64{"agua_cerca": 1.0}},
	{ID: "imp_paisajes", Label: "Ver paisajes", Icon: "🏞️", Tags: map[string]float64{"paisajes": 1.0}},
	{ID: "imp_caminar", Label: "Caminar mucho", Icon: "🚶", Tags: map[string]float64{"caminable": 1.0}},
	{ID: "imp_tranquilidad", Label: "Tranquilidad", Icon: "😌", Tags: map[string]float64{"tranquilidad": 1.0}},
	{ID: "imp_autentico", Label: "Sentirlo auténtico", Icon: "🏺", Tags: map[string]float64{"autentica": 1.0}},
	{ID: "imp_diferente", Label: "Algo diferente", Icon: "🗺️", Tags: map[string]float64{"diferente": 1.0}},
	{ID: "imp_comer", Label: "Comer muy bien", Icon: "🍽️", Tags: map[string]float64{"gastronomia": 1.0}},
	{ID: "imp_excursiones", Label: "Excursiones fáciles cerca", Icon: "🚌", Tags: map[string]float64{"excursiones_faciles": 1.0}},
	{ID: "imp_sin_coche", Label: "Ciudad cómoda sin coche", Icon: "🚶‍♀️", Tags: map[string]float64{"caminable": 0.6, "excursiones_faciles": 0.4}},
	{ID: "imp_transporte", Label: "Buen transporte público", Icon: "🚇", Tags: map[string]float64{"caminable": 0.5, "excursiones_faciles": 0.5}},
	{ID: "imp_relajada", Label: "Escapada relajada", Icon: "🧘", Tags: map[string]float64{"excursiones_faciles": 0.6, "tranquilidad": 0.4}},
	{ID: "imp_precio", Label: "Buena relación calidad/precio", Icon: "💰", Tags: map[string]float64{}},
	{ID: "imp_compacta", Label: "Ciudad mediana/compacta", Icon: "🏘️", Tags: map[string]float64{"caminable": 1.0}},
}

// NoWantOption is the single source of truth for both the penalty
// computation and the explanation metadata shown in results. A negative
// penalty amount inverts the rule: it punishes cities that HAVE the tag
// instead of cities that lack it (see applyNoWantPenalties).
type NoWantOption struct {
	ID             string             `json:"id"`
	Label          string             `json:"label"`
	Icon           string             `json:"icon"`
	Penalty        map[string]float64 `json:"penalty"`
	AffectedCities []string           `json:"affectedCities,omitempty"`
	CityPenalty    float64            `json:"cityPenalty,omitempty"`
	BoostTag       string             `json:"boostTag,omitempty"`
	BoostAmount    float64            `json:"boostAmount,omitempty"`
}

var mg2NoWantOptions = []NoWantOption{
	{ID: "no_masificacion", Label: "Mucha masificación turística", Icon: "👥", Penalty: map[string]float64{"autentica": 0.04, "tranquilidad": 0.04}},
	{ID: "no_grande", Label: "Ciudad muy grande", Icon: "🏙️", Penalty: map[string]float64{"caminable": 0.03, "tranquilidad": 0.03}, AffectedCities: []string{"paris"}},
	{ID: "no_caro", Label: "Destino caro", Icon: "💸", Penalty: map[string]float64{}, AffectedCities: []string{"ginebra", "paris"}, CityPenalty: 0.08},
	{ID: "no_coche", Label: "Tener que usar coche sí o sí", Icon: "🚗", Penalty: map[string]float64{"caminable": 0.05}},
	{ID: "no_traslados", Label: "Demasiados traslados largos", Icon: "🛣️", Penalty: map[string]float64{"excursiones_faciles": 0.05}},
	{ID: "no_aburrido", Label: "Lugar demasiado tranquilo", Icon: "😴", Penalty: map[string]float64{"tranquilidad": -0.05}},
	{ID: "no_postal", Label: "Mucho \"de postal\" y poco auténtico", Icon: "📸", Penalty: map[string]float64{"autentica": 0.05}},
	{ID: "no_comida", Label: "Comida poco interesante", Icon: "😕", Penalty: map[string]float64{"gastronomia": 0.05}},
	{ID: "no_urbano", Label: "Demasiado urbano sin naturaleza", Icon: "🏢", Penalty: map[string]float64{"naturaleza_potente": 0.05}},
	{ID: "no_cuestas", Label: "Demasiadas cuestas/esfuerzo", Icon: "🥵", Penalty: map[string]float64{"caminable": 0.03}},
	{ID: "no_frio", Label: "Clima muy frío", Icon: "🥶", Penalty: map[string]float64{}},
	{ID: "no_lluvia", Label: "Lluvia frecuente", Icon: "🌧️", Penalty: map[string]float64{}},
	{ID: "no_pie", Label: "Dificultad de moverse a pie", Icon: "🦶", Penalty: map[string]float64{"caminable": 0.05}},
	{ID: "no_paseos", Label: "Pocas opciones de paseos", Icon: "🚷", Penalty: map[string]float64{"paisajes": 0.03, "excursiones_faciles": 0.03}},
	{ID: "no_conocido", Label: "Destino \"muy conocido\"", Icon: "🌍", Penalty: map[string]float64{}, BoostTag: "diferente", BoostAmount: 0.05},
}

func noWantOptionByID(id string) *NoWantOption {
	for i := range mg2NoWantOptions {
		if mg2NoWantOptions[i].ID == id {
			return &mg2NoWantOptions[i]
		}
	}
	return nil
}

type Slider struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Min          int    `json:"min"`
	Max          int    `json:"max"`
	DefaultValue int    `json:"defaultValue"`
}

func mg3Sliders() []Slider {
	sliders := make([]Slider, 0, len(tags))
	for _, tag := range tags {
		sliders = append(sliders, Slider{
			ID:           tag,
			Label:        tagLabels[tag],
			Min:          1,
			Max:          5,
			DefaultValue: 3,
		})
	}
	return sliders
}

// Scoring weights per signal source; they sum to 1.0.
const (
	weightMG1 = 0.30
	weightMG2 = 0.40
	weightMG3 = 0.30

	scoringEpsilon  = 0.0001
	maxTotalPenalty = 0.15

	mg2MaxSelect          = 3
	mg3DefaultSliderValue = 3
)

// Countdown durations in whole seconds (the protocol ticks once per second).
const (
	mg1QuestionSeconds    = 30
	mg2ImportantSeconds   = 60
	mg2NoWantSeconds      = 60
	mg3Seconds            = 60
	instructionsSeconds   = 5
	readyCountdownSeconds = 3
)
