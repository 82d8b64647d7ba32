package narrative

import (
	"encoding/json"
	"fmt"

	"github.com/tastecanvas/tastecanvas-api/internal/domain/models"
)

func narrativePrompt(prefs models.PreferenceSet, profile *models.CulturalProfile) (string, error) {
	prefsJSON, profileJSON, err := marshalContext(prefs, profile)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`You are a cultural analyst writing a personal identity report.

The user's stated preferences:
%s

The aggregated cultural profile derived from a global cultural graph:
%s

Write a warm, specific narrative about this person's cultural identity.
Ground every claim in the profile data above. Do not invent preferences
the user did not state.

Respond with ONLY a JSON object in this exact shape:
{
  "title": "a short evocative title for this cultural identity",
  "story": "3-4 paragraphs of narrative",
  "insights": ["3-5 specific observations"],
  "personality": "one paragraph describing the cultural personality",
  "culturalDNA": "one sentence capturing the essence",
  "recommendations": ["3-5 concrete things to explore next"],
  "evolutionPredictions": ["2-3 ways these tastes may evolve"],
  "culturalBlindSpots": ["2-3 domains or styles notably absent"],
  "diversityScore": %d
}`, prefsJSON, profileJSON, profile.DiversityScore), nil
}

func discoveriesPrompt(narrative *models.CulturalNarrative, prefs models.PreferenceSet, profile *models.CulturalProfile) (string, error) {
	prefsJSON, profileJSON, err := marshalContext(prefs, profile)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`A user has this cultural identity: %q (%s)

Their stated preferences:
%s

Their aggregated cultural profile:
%s

Suggest cultural discoveries they likely have NOT encountered yet but would
love, crossing between their preference domains where possible. Each entry
names one specific work, artist, place or experience with a short reason.

Respond with ONLY a JSON object: {"discoveries": ["5-7 suggestions"]}`,
		narrative.Title, narrative.CulturalDNA, prefsJSON, profileJSON), nil
}

func challengesPrompt(prefs models.PreferenceSet, profile *models.CulturalProfile, narrative *models.CulturalNarrative) (string, error) {
	prefsJSON, profileJSON, err := marshalContext(prefs, profile)
	if err != nil {
		return "", err
	}

	blindSpots, err := json.Marshal(narrative.CulturalBlindSpots)
	if err != nil {
		return "", fmt.Errorf("encoding blind spots: %w", err)
	}

	return fmt.Sprintf(`A user's cultural profile and preferences:
%s
%s

Known blind spots: %s

Propose growth challenges: concrete, achievable actions that would stretch
this person's cultural range beyond their current habits. Each challenge is
one sentence starting with a verb.

Respond with ONLY a JSON object: {"challenges": ["4-6 challenges"]}`,
		prefsJSON, profileJSON, blindSpots), nil
}

func marshalContext(prefs models.PreferenceSet, profile *models.CulturalProfile) (string, string, error) {
	prefsJSON, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("encoding preferences: %w", err)
	}
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("encoding profile: %w", err)
	}
	return string(prefsJSON), string(profileJSON), nil
}
