package main

import (
	"math"
	"reflect"
	"testing"
)

func sheetWithPicks(picks map[string][]string, sliders map[string]int) AnswerSheet {
	sheet := newAnswerSheet()
	for k, v := range picks {
		sheet.Picks[k] = v
	}
	sheet.Sliders = sliders
	return sheet
}

func coastalFoodieSheet() AnswerSheet {
	return sheetWithPicks(map[string][]string{
		"mg1_q1":        {"agua", "comida"},
		"mg1_q4":        {"mar"},
		"mg1_q5":        {"comer"},
		"mg2_important": {"imp_agua", "imp_comer"},
		"mg2_nowant":    {},
	}, map[string]int{
		"agua_cerca": 5, "gastronomia": 5,
		"montana_cerca": 1, "naturaleza_potente": 1, "caminable": 1,
		"tranquilidad": 1, "paisajes": 1, "autentica": 1,
		"diferente": 1, "excursiones_faciles": 1,
	})
}

func testPlayers(sheet1, sheet2 AnswerSheet) []*Player {
	return []*Player{
		{ID: "p1", Name: "Ana", Answers: sheet1},
		{ID: "p2", Name: "Luis", Answers: sheet2},
	}
}

func containsCity(ranked []RankedCity, cityID string) bool {
	for _, c := range ranked {
		if c.CityID == cityID {
			return true
		}
	}
	return false
}

func Test_ResultsDeterministic(t *testing.T) {
	a := computeResults(testPlayers(coastalFoodieSheet(), coastalFoodieSheet()))
	b := computeResults(testPlayers(coastalFoodieSheet(), coastalFoodieSheet()))

	if !reflect.DeepEqual(a, b) {
		t.Error("identical answers produced different results")
	}
}

func Test_CoastalFoodiePreferencesRankCoastalCities(t *testing.T) {
	results := computeResults(testPlayers(coastalFoodieSheet(), coastalFoodieSheet()))

	for _, want := range []string{"bilbao", "a_coruna", "santander"} {
		if !containsCity(results.Player1.Top4, want) {
			t.Errorf("expected %s in player1 top4: %+v", want, results.Player1.Top4)
		}
		if !containsCity(results.Combined.Top5, want) {
			t.Errorf("expected %s in combined top5: %+v", want, results.Combined.Top5)
		}
	}

	for _, notWant := range []string{"sofia", "ginebra"} {
		if containsCity(results.Player1.Top4, notWant) {
			t.Errorf("did not expect %s in player1 top4: %+v", notWant, results.Player1.Top4)
		}
		if containsCity(results.Combined.Top5, notWant) {
			t.Errorf("did not expect %s in combined top5: %+v", notWant, results.Combined.Top5)
		}
	}

	// Identical answer sheets make every individual top-4 entry a
	// coincidence.
	if len(results.Coincidences) != 4 {
		t.Errorf("expected 4 coincidences, got %v", results.Coincidences)
	}
}

func Test_PenaltyCap(t *testing.T) {
	selections := []*NoWantOption{
		noWantOptionByID("no_coche"),
		noWantOptionByID("no_pie"),
		noWantOptionByID("no_comida"),
		noWantOptionByID("no_urbano"),
	}
	cityTags := map[string]float64{}

	// 4 x 0.05 on absent tags exceeds the cap, so only 15% applies.
	got := applyNoWantPenalties(1.0, "bolonia", cityTags, selections)
	if math.Abs(got-0.85) > 1e-9 {
		t.Errorf("expected capped score 0.85, got %f", got)
	}
}

func Test_InvertedPenaltyPunishesQuietCities(t *testing.T) {
	selections := []*NoWantOption{noWantOptionByID("no_aburrido")}

	quiet := applyNoWantPenalties(1.0, "x", map[string]float64{"tranquilidad": 1}, selections)
	lively := applyNoWantPenalties(1.0, "x", map[string]float64{"tranquilidad": 0}, selections)

	if quiet >= lively {
		t.Errorf("no_aburrido should punish quiet cities more: quiet=%f lively=%f", quiet, lively)
	}
	if math.Abs(quiet-0.95) > 1e-9 {
		t.Errorf("expected 0.95 for fully quiet city, got %f", quiet)
	}
}

func Test_CityPenaltyHitsAffectedCitiesOnly(t *testing.T) {
	selections := []*NoWantOption{noWantOptionByID("no_caro")}
	cityTags := map[string]float64{}

	expensive := applyNoWantPenalties(1.0, "ginebra", cityTags, selections)
	cheap := applyNoWantPenalties(1.0, "bilbao", cityTags, selections)

	if math.Abs(expensive-0.92) > 1e-9 {
		t.Errorf("expected 0.92 for ginebra, got %f", expensive)
	}
	if cheap != 1.0 {
		t.Errorf("expected no penalty for bilbao, got %f", cheap)
	}
}

func Test_BoostReducesPenalty(t *testing.T) {
	selections := []*NoWantOption{noWantOptionByID("no_conocido")}

	// A fully "different" city gets a pure boost, clamped at zero penalty.
	different := applyNoWantPenalties(1.0, "x", map[string]float64{"diferente": 1}, selections)
	if different != 1.0 {
		t.Errorf("expected boost clamped to zero penalty, got %f", different)
	}
}

func Test_MG3DefaultsToNeutral(t *testing.T) {
	prefs := buildMG3Preferences(newAnswerSheet())
	for _, tag := range tags {
		if math.Abs(prefs[tag]-0.5) > 1e-9 {
			t.Errorf("expected neutral 0.5 for %s, got %f", tag, prefs[tag])
		}
	}
}

func Test_NormalizePrefsScalesMaxToOne(t *testing.T) {
	prefs := zeroPrefs()
	prefs["agua_cerca"] = 2
	prefs["gastronomia"] = 1

	normalizePrefs(prefs)

	if prefs["agua_cerca"] != 1.0 {
		t.Errorf("expected max scaled to 1, got %f", prefs["agua_cerca"])
	}
	if prefs["gastronomia"] != 0.5 {
		t.Errorf("expected 0.5, got %f", prefs["gastronomia"])
	}

	// All-zero vectors stay zero instead of dividing by zero.
	zeros := normalizePrefs(zeroPrefs())
	for tag, v := range zeros {
		if v != 0 {
			t.Errorf("expected zero for %s, got %f", tag, v)
		}
	}
}

func Test_ScoresRoundedToThreeDecimals(t *testing.T) {
	results := computeResults(testPlayers(coastalFoodieSheet(), coastalFoodieSheet()))

	for _, c := range results.Player1.Top4 {
		if math.Abs(c.Score*1000-math.Round(c.Score*1000)) > 1e-9 {
			t.Errorf("score %f for %s not rounded to 3 decimals", c.Score, c.CityID)
		}
	}
}

func Test_PenaltyExplanations(t *testing.T) {
	sheet := sheetWithPicks(map[string][]string{
		"mg2_nowant": {"no_caro", "no_conocido"},
	}, nil)

	explanations := buildPenaltyExplanation(sheet)
	if len(explanations) != 2 {
		t.Fatalf("expected 2 explanations, got %d", len(explanations))
	}

	caro := explanations[0]
	if caro.ID != "no_caro" || len(caro.AffectedCities) != 2 {
		t.Errorf("unexpected no_caro explanation: %+v", caro)
	}

	conocido := explanations[1]
	if conocido.BoostTag == nil || *conocido.BoostTag != "diferente" {
		t.Errorf("expected boost tag diferente, got %+v", conocido.BoostTag)
	}
}
