package main

import (
	"encoding/json"
	"fmt"
)

// LobbySettings are the game rules the host picks while everyone waits.
// The lobby itself only stores and forwards them.
type LobbySettings struct {
	MaxPlayers        int     `json:"maxPlayers"`
	Impostors         int     `json:"impostors"`
	KillCooldown      float64 `json:"killCooldown"`
	KillDistance      string  `json:"killDistance"`
	EmergencyMeetings int     `json:"emergencyMeetings"`
	EmergencyCooldown int     `json:"emergencyCooldown"`
	DiscussionTime    int     `json:"discussionTime"`
	VotingTime        int     `json:"votingTime"`
	PlayerSpeed       float64 `json:"playerSpeed"`
	CrewVision        float64 `json:"crewVision"`
	ImpostorVision    float64 `json:"impostorVision"`
	CommonTasks       int     `json:"commonTasks"`
	LongTasks         int     `json:"longTasks"`
	ShortTasks        int     `json:"shortTasks"`
	ConfirmEjects     bool    `json:"confirmEjects"`
	AnonymousVotes    bool    `json:"anonymousVotes"`
	VisualTasks       bool    `json:"visualTasks"`
	TaskBarUpdates    string  `json:"taskBarUpdates"`
}

// DefaultSettings returns the rules a new room starts with
func DefaultSettings() LobbySettings {
	return LobbySettings{
		MaxPlayers:        10,
		Impostors:         2,
		KillCooldown:      25,
		KillDistance:      "medium",
		EmergencyMeetings: 1,
		EmergencyCooldown: 15,
		DiscussionTime:    15,
		VotingTime:        120,
		PlayerSpeed:       1,
		CrewVision:        1,
		ImpostorVision:    1.5,
		CommonTasks:       1,
		LongTasks:         1,
		ShortTasks:        2,
		ConfirmEjects:     true,
		VisualTasks:       true,
		TaskBarUpdates:    "always",
	}
}

// Merge applies a partial JSON object on top of s. Fields absent from the
// patch keep their value; present fields overwrite. On a decode error s is
// left unchanged.
func (s *LobbySettings) Merge(patch json.RawMessage) error {
	if len(patch) == 0 {
		return nil
	}
	next := *s
	if err := json.Unmarshal(patch, &next); err != nil {
		return fmt.Errorf("merge settings: %w", err)
	}
	next.MaxPlayers = int(Clamp(float64(next.MaxPlayers), 1, float64(PaletteSize)))
	*s = next
	return nil
}
