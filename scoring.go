package main

import (
	"math"
	"sort"
)

// Scoring engine. Everything here is pure: answers in, results out, no
// room state touched. Iteration always follows catalog order so equal
// scores rank identically on every run.

type RankedCity struct {
	CityID  string     `json:"cityId"`
	Name    string     `json:"name"`
	Country string     `json:"country"`
	Score   float64    `json:"score"`
	TopTags []TagLabel `json:"topTags"`
}

type TagLabel struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
}

type TagScore struct {
	Tag   string  `json:"tag"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type PlayerResult struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Top4       []RankedCity        `json:"top4"`
	TagProfile map[string]TagScore `json:"tagProfile"`
}

type CombinedResult struct {
	Top5 []RankedCity `json:"top5"`
}

type PenaltyExplanation struct {
	ID             string   `json:"id"`
	Label          string   `json:"label"`
	AffectedCities []string `json:"affectedCities"`
	PenaltyTags    []string `json:"penaltyTags"`
	BoostTag       *string  `json:"boostTag"`
}

type PenaltyBreakdown struct {
	Player1 []PenaltyExplanation `json:"player1"`
	Player2 []PenaltyExplanation `json:"player2"`
}

type Results struct {
	Player1      PlayerResult     `json:"player1"`
	Player2      PlayerResult     `json:"player2"`
	Combined     CombinedResult   `json:"combined"`
	Coincidences []string         `json:"coincidences"`
	Penalties    PenaltyBreakdown `json:"penalties"`
}

func computeResults(players []*Player) *Results {
	p1, p2 := players[0], players[1]

	p1Scores := computePlayerScores(p1.Answers)
	p2Scores := computePlayerScores(p2.Answers)

	p1Top4 := topCities(p1Scores, 4)
	p2Top4 := topCities(p2Scores, 4)

	combined := make(map[string]float64, len(cities))
	for _, city := range cities {
		combined[city.ID] = (p1Scores[city.ID] + p2Scores[city.ID]) / 2
	}

	p2TopIDs := make(map[string]bool, len(p2Top4))
	for _, c := range p2Top4 {
		p2TopIDs[c.CityID] = true
	}
	coincidences := make([]string, 0)
	for _, c := range p1Top4 {
		if p2TopIDs[c.CityID] {
			coincidences = append(coincidences, c.CityID)
		}
	}

	return &Results{
		Player1:      PlayerResult{ID: p1.ID, Name: p1.Name, Top4: p1Top4, TagProfile: buildTagProfile(p1.Answers)},
		Player2:      PlayerResult{ID: p2.ID, Name: p2.Name, Top4: p2Top4, TagProfile: buildTagProfile(p2.Answers)},
		Combined:     CombinedResult{Top5: topCities(combined, 5)},
		Coincidences: coincidences,
		Penalties: PenaltyBreakdown{
			Player1: buildPenaltyExplanation(p1.Answers),
			Player2: buildPenaltyExplanation(p2.Answers),
		},
	}
}

func computePlayerScores(sheet AnswerSheet) map[string]float64 {
	mg1Prefs := buildMG1Preferences(sheet)
	mg2Prefs := buildMG2ImportantPreferences(sheet)
	mg3Prefs := buildMG3Preferences(sheet)
	noWant := selectedNoWantOptions(sheet)

	scores := make(map[string]float64, len(cities))
	for _, city := range cities {
		// City tags live on a 0..2 scale, preferences on 0..1.
		cityTags := make(map[string]float64, len(tags))
		for _, tag := range tags {
			cityTags[tag] = city.Tags[tag] / 2
		}

		s1 := similarity(mg1Prefs, cityTags)
		s2 := similarity(mg2Prefs, cityTags)
		s3 := similarity(mg3Prefs, cityTags)

		score := weightMG1*s1 + weightMG2*s2 + weightMG3*s3
		scores[city.ID] = applyNoWantPenalties(score, city.ID, cityTags, noWant)
	}
	return scores
}

func buildMG1Preferences(sheet AnswerSheet) map[string]float64 {
	prefs := zeroPrefs()
	for _, question := range mg1Questions {
		for _, optID := range sheet.Picks["mg1_"+question.ID] {
			for _, opt := range question.Options {
				if opt.ID == optID {
					for tag, weight := range opt.Tags {
						prefs[tag] += weight
					}
					break
				}
			}
		}
	}
	return normalizePrefs(prefs)
}

func buildMG2ImportantPreferences(sheet AnswerSheet) map[string]float64 {
	prefs := zeroPrefs()
	for _, optID := range sheet.Picks["mg2_important"] {
		for _, opt := range mg2ImportantOptions {
			if opt.ID == optID {
				for tag, weight := range opt.Tags {
					prefs[tag] += weight
				}
				break
			}
		}
	}
	return normalizePrefs(prefs)
}

// buildMG3Preferences maps slider values 1..5 onto 0..1. A missing tag
// counts as the neutral middle position.
func buildMG3Preferences(sheet AnswerSheet) map[string]float64 {
	prefs := make(map[string]float64, len(tags))
	for _, tag := range tags {
		val := mg3DefaultSliderValue
		if v, ok := sheet.Sliders[tag]; ok {
			val = v
		}
		prefs[tag] = float64(val-1) / 4
	}
	return prefs
}

func zeroPrefs() map[string]float64 {
	prefs := make(map[string]float64, len(tags))
	for _, tag := range tags {
		prefs[tag] = 0
	}
	return prefs
}

// normalizePrefs scales so the strongest preference is exactly 1. An
// all-zero vector stays zero.
func normalizePrefs(prefs map[string]float64) map[string]float64 {
	maxVal := 0.0
	for _, tag := range tags {
		if prefs[tag] > maxVal {
			maxVal = prefs[tag]
		}
	}
	if maxVal > 0 {
		for _, tag := range tags {
			prefs[tag] /= maxVal
		}
	}
	return prefs
}

func similarity(prefs, cityTags map[string]float64) float64 {
	numerator := 0.0
	denominator := 0.0
	for _, tag := range tags {
		numerator += prefs[tag] * cityTags[tag]
		denominator += prefs[tag]
	}
	return numerator / (denominator + scoringEpsilon)
}

func selectedNoWantOptions(sheet AnswerSheet) []*NoWantOption {
	selected := make([]*NoWantOption, 0)
	for _, optID := range sheet.Picks["mg2_nowant"] {
		if opt := noWantOptionByID(optID); opt != nil {
			selected = append(selected, opt)
		}
	}
	return selected
}

func applyNoWantPenalties(score float64, cityID string, cityTags map[string]float64, selections []*NoWantOption) float64 {
	totalPenalty := 0.0

	for _, opt := range selections {
		for _, tag := range tags {
			amount, ok := opt.Penalty[tag]
			if !ok {
				continue
			}
			if amount < 0 {
				// Inverted rule: punish cities that HAVE the tag.
				totalPenalty += -amount * cityTags[tag]
			} else {
				totalPenalty += amount * (1 - cityTags[tag])
			}
		}

		for _, affected := range opt.AffectedCities {
			if affected == cityID {
				cityPenalty := opt.CityPenalty
				if cityPenalty == 0 {
					cityPenalty = 0.05
				}
				totalPenalty += cityPenalty
			}
		}

		if opt.BoostTag != "" {
			boost := opt.BoostAmount
			if boost == 0 {
				boost = 0.05
			}
			totalPenalty -= boost * cityTags[opt.BoostTag]
		}
	}

	totalPenalty = math.Max(0, math.Min(totalPenalty, maxTotalPenalty))
	return score * (1 - totalPenalty)
}

func topCities(scores map[string]float64, count int) []RankedCity {
	order := make([]int, len(cities))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[cities[order[i]].ID] > scores[cities[order[j]].ID]
	})

	if count > len(order) {
		count = len(order)
	}
	ranked := make([]RankedCity, 0, count)
	for _, idx := range order[:count] {
		city := &cities[idx]
		ranked = append(ranked, RankedCity{
			CityID:  city.ID,
			Name:    city.Name,
			Country: city.Country,
			Score:   round3(scores[city.ID]),
			TopTags: topTagsForCity(city),
		})
	}
	return ranked
}

func topTagsForCity(city *City) []TagLabel {
	type tagVal struct {
		tag string
		val float64
	}
	vals := make([]tagVal, 0, len(tags))
	for _, tag := range tags {
		vals = append(vals, tagVal{tag, city.Tags[tag]})
	}
	sort.SliceStable(vals, func(i, j int) bool {
		return vals[i].val > vals[j].val
	})

	top := make([]TagLabel, 0, 3)
	for _, tv := range vals[:3] {
		if tv.val > 0 {
			top = append(top, TagLabel{Tag: tv.tag, Label: tagLabels[tv.tag]})
		}
	}
	return top
}

func buildTagProfile(sheet AnswerSheet) map[string]TagScore {
	mg1 := buildMG1Preferences(sheet)
	mg2 := buildMG2ImportantPreferences(sheet)
	mg3 := buildMG3Preferences(sheet)

	profile := make(map[string]TagScore, len(tags))
	for _, tag := range tags {
		combined := weightMG1*mg1[tag] + weightMG2*mg2[tag] + weightMG3*mg3[tag]
		profile[tag] = TagScore{Tag: tag, Label: tagLabels[tag], Score: round3(combined)}
	}
	return profile
}

func buildPenaltyExplanation(sheet AnswerSheet) []PenaltyExplanation {
	explanations := make([]PenaltyExplanation, 0)
	for _, opt := range selectedNoWantOptions(sheet) {
		penaltyTags := make([]string, 0, len(opt.Penalty))
		for _, tag := range tags {
			if _, ok := opt.Penalty[tag]; ok {
				penaltyTags = append(penaltyTags, tag)
			}
		}

		affected := opt.AffectedCities
		if affected == nil {
			affected = []string{}
		}

		var boost *string
		if opt.BoostTag != "" {
			boost = &opt.BoostTag
		}

		explanations = append(explanations, PenaltyExplanation{
			ID:             opt.ID,
			Label:          opt.Label,
			AffectedCities: affected,
			PenaltyTags:    penaltyTags,
			BoostTag:       boost,
		})
	}
	return explanations
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
