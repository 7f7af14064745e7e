package fpl

import (
	"strings"
	"time"

	"github.com/fplstats/minileague/internal/usecase"
)

type bootstrapPayload struct {
	Events       []eventPayload `json:"events"`
	Phases       []phasePayload `json:"phases"`
	TotalPlayers int            `json:"total_players"`
}

type eventPayload struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Finished    bool   `json:"finished"`
	DataChecked bool   `json:"data_checked"`
	IsCurrent   bool   `json:"is_current"`
	IsNext      bool   `json:"is_next"`
}

type phasePayload struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	StartEvent int    `json:"start_event"`
	StopEvent  int    `json:"stop_event"`
}

type fixturePayload struct {
	ID          int64  `json:"id"`
	Event       int    `json:"event"`
	KickoffTime string `json:"kickoff_time"`
	TeamH       int64  `json:"team_h"`
	TeamA       int64  `json:"team_a"`
	TeamHScore  *int   `json:"team_h_score"`
	TeamAScore  *int   `json:"team_a_score"`
	Started     bool   `json:"started"`
	Finished    bool   `json:"finished"`
}

type standingsEnvelope struct {
	League struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Standings struct {
		HasNext bool                  `json:"has_next"`
		Page    int                   `json:"page"`
		Results []standingsRowPayload `json:"results"`
	} `json:"standings"`
}

type standingsRowPayload struct {
	Entry      int64  `json:"entry"`
	Rank       int    `json:"rank"`
	LastRank   int    `json:"last_rank"`
	Total      int    `json:"total"`
	EventTotal int    `json:"event_total"`
	EntryName  string `json:"entry_name"`
	PlayerName string `json:"player_name"`
}

type entryPayload struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	PlayerFirstName    string `json:"player_first_name"`
	PlayerLastName     string `json:"player_last_name"`
	PlayerRegionISO    string `json:"player_region_iso_code_short"`
	SummaryOverallPts  int    `json:"summary_overall_points"`
	SummaryOverallRank int    `json:"summary_overall_rank"`
	Leagues            struct {
		Classic []entryLeaguePayload `json:"classic"`
	} `json:"leagues"`
}

type entryLeaguePayload struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	EntryRank int    `json:"entry_rank"`
}

type picksEnvelope struct {
	EntryHistory struct {
		Event              int `json:"event"`
		Points             int `json:"points"`
		TotalPoints        int `json:"total_points"`
		EventTransfersCost int `json:"event_transfers_cost"`
		OverallRank        int `json:"overall_rank"`
	} `json:"entry_history"`
	Picks []pickPayload `json:"picks"`
}

type pickPayload struct {
	Element       int64 `json:"element"`
	Position      int   `json:"position"`
	Multiplier    int   `json:"multiplier"`
	IsCaptain     bool  `json:"is_captain"`
	IsViceCaptain bool  `json:"is_vice_captain"`
}

type historyEnvelope struct {
	Current []historyRoundPayload `json:"current"`
}

type historyRoundPayload struct {
	Event              int `json:"event"`
	Points             int `json:"points"`
	TotalPoints        int `json:"total_points"`
	OverallRank        int `json:"overall_rank"`
	EventTransfersCost int `json:"event_transfers_cost"`
}

type transferPayload struct {
	ElementIn  int64  `json:"element_in"`
	ElementOut int64  `json:"element_out"`
	Event      int    `json:"event"`
	Time       string `json:"time"`
}

type liveEnvelope struct {
	Elements []liveElementPayload `json:"elements"`
}

type liveElementPayload struct {
	ID    int64 `json:"id"`
	Stats struct {
		TotalPoints int `json:"total_points"`
		Minutes     int `json:"minutes"`
	} `json:"stats"`
}

type searchEnvelope struct {
	Results []searchRowPayload `json:"results"`
}

type searchRowPayload struct {
	Entry      int64  `json:"entry"`
	EntryName  string `json:"entry_name"`
	PlayerName string `json:"player_name"`
	Region     string `json:"player_region_iso_code_short"`
}

func mapEvent(item eventPayload) usecase.ExternalEvent {
	return usecase.ExternalEvent{
		ID:          item.ID,
		Name:        item.Name,
		Finished:    item.Finished,
		DataChecked: item.DataChecked,
		IsCurrent:   item.IsCurrent,
		IsNext:      item.IsNext,
	}
}

func mapBootstrap(payload bootstrapPayload) usecase.ExternalBootstrap {
	out := usecase.ExternalBootstrap{
		Events:       make([]usecase.ExternalEvent, 0, len(payload.Events)),
		Phases:       make([]usecase.ExternalPhase, 0, len(payload.Phases)),
		TotalPlayers: payload.TotalPlayers,
	}
	for _, item := range payload.Events {
		out.Events = append(out.Events, mapEvent(item))
	}
	for _, item := range payload.Phases {
		out.Phases = append(out.Phases, usecase.ExternalPhase{
			ID:         item.ID,
			Name:       item.Name,
			StartEvent: item.StartEvent,
			StopEvent:  item.StopEvent,
		})
	}
	return out
}

func mapFixture(item fixturePayload) usecase.ExternalFixture {
	out := usecase.ExternalFixture{
		ID:         item.ID,
		Event:      item.Event,
		HomeTeamID: item.TeamH,
		AwayTeamID: item.TeamA,
		HomeScore:  item.TeamHScore,
		AwayScore:  item.TeamAScore,
		Started:    item.Started,
		Finished:   item.Finished,
	}
	if parsed := parseProviderTime(item.KickoffTime); parsed != nil {
		out.KickoffAt = *parsed
	}
	return out
}

func mapStandings(payload standingsEnvelope) usecase.ExternalStandingsPage {
	out := usecase.ExternalStandingsPage{
		LeagueID:   payload.League.ID,
		LeagueName: payload.League.Name,
		Page:       payload.Standings.Page,
		HasNext:    payload.Standings.HasNext,
		Rows:       make([]usecase.ExternalStandingRow, 0, len(payload.Standings.Results)),
	}
	for _, row := range payload.Standings.Results {
		out.Rows = append(out.Rows, usecase.ExternalStandingRow{
			EntryID:     row.Entry,
			Rank:        row.Rank,
			LastRank:    row.LastRank,
			Total:       row.Total,
			EventTotal:  row.EventTotal,
			EntryName:   row.EntryName,
			ManagerName: row.PlayerName,
		})
	}
	return out
}

func mapEntry(payload entryPayload) usecase.ExternalManagerEntry {
	out := usecase.ExternalManagerEntry{
		ID:            payload.ID,
		TeamName:      payload.Name,
		ManagerName:   strings.TrimSpace(payload.PlayerFirstName + " " + payload.PlayerLastName),
		Region:        payload.PlayerRegionISO,
		OverallPoints: payload.SummaryOverallPts,
		OverallRank:   payload.SummaryOverallRank,
	}
	for _, item := range payload.Leagues.Classic {
		out.ClassicLeagues = append(out.ClassicLeagues, usecase.ExternalEntryLeague{
			ID:        item.ID,
			Name:      item.Name,
			EntryRank: item.EntryRank,
		})
	}
	return out
}

func mapPicks(payload picksEnvelope) usecase.ExternalManagerPicks {
	out := usecase.ExternalManagerPicks{
		Event:              payload.EntryHistory.Event,
		Points:             payload.EntryHistory.Points,
		TotalPoints:        payload.EntryHistory.TotalPoints,
		EventTransfersCost: payload.EntryHistory.EventTransfersCost,
		OverallRank:        payload.EntryHistory.OverallRank,
		Picks:              make([]usecase.ExternalPick, 0, len(payload.Picks)),
	}
	for _, item := range payload.Picks {
		out.Picks = append(out.Picks, usecase.ExternalPick{
			PlayerID:      item.Element,
			Position:      item.Position,
			Multiplier:    item.Multiplier,
			IsCaptain:     item.IsCaptain,
			IsViceCaptain: item.IsViceCaptain,
		})
	}
	return out
}

func mapHistory(payload historyEnvelope) usecase.ExternalManagerHistory {
	out := usecase.ExternalManagerHistory{
		Rounds: make([]usecase.ExternalHistoryRound, 0, len(payload.Current)),
	}
	for _, item := range payload.Current {
		out.Rounds = append(out.Rounds, usecase.ExternalHistoryRound{
			Event:              item.Event,
			Points:             item.Points,
			TotalPoints:        item.TotalPoints,
			OverallRank:        item.OverallRank,
			EventTransfersCost: item.EventTransfersCost,
		})
	}
	return out
}

func mapTransfers(items []transferPayload) []usecase.ExternalTransfer {
	out := make([]usecase.ExternalTransfer, 0, len(items))
	for _, item := range items {
		mapped := usecase.ExternalTransfer{
			PlayerIn:  item.ElementIn,
			PlayerOut: item.ElementOut,
			Event:     item.Event,
		}
		if parsed := parseProviderTime(item.Time); parsed != nil {
			mapped.Time = *parsed
		}
		out = append(out, mapped)
	}
	return out
}

func mapLive(gw int, payload liveEnvelope) usecase.ExternalLiveGameweek {
	out := usecase.ExternalLiveGameweek{
		Event:   gw,
		Players: make([]usecase.ExternalLivePlayer, 0, len(payload.Elements)),
	}
	for _, item := range payload.Elements {
		out.Players = append(out.Players, usecase.ExternalLivePlayer{
			ID:          item.ID,
			TotalPoints: item.Stats.TotalPoints,
			Minutes:     item.Stats.Minutes,
		})
	}
	return out
}

func mapSearch(payload searchEnvelope) []usecase.ExternalEntrySearch {
	out := make([]usecase.ExternalEntrySearch, 0, len(payload.Results))
	for _, row := range payload.Results {
		out = append(out, usecase.ExternalEntrySearch{
			EntryID:     row.Entry,
			EntryName:   row.EntryName,
			ManagerName: row.PlayerName,
			Region:      row.Region,
		})
	}
	return out
}

func parseProviderTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z0700", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}
