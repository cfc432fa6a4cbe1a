package engine

// RoundResult is the outcome of a finished round.
type RoundResult struct {
	Scores     map[string]int `json:"scores"`
	WinnerID   string         `json:"winnerId"`
	CallerWon  bool           `json:"callerWon"`
	ChampionID string         `json:"championId,omitempty"`
}

// Scores sums each player's hand values.
func Scores(g *GameState) map[string]int {
	scores := make(map[string]int, len(g.Players))
	for i := range g.Players {
		total := 0
		for _, c := range g.Players[i].Hand {
			total += c.Value()
		}
		scores[g.Players[i].ID] = total
	}
	return scores
}

// ScoreRound resolves a finished final round. The caller wins by holding the
// lowest score outright or tied; otherwise the coalition wins through its
// champion — the designated coalition leader, or failing that the lowest
// non-caller.
func ScoreRound(g *GameState) RoundResult {
	res := RoundResult{Scores: Scores(g)}
	if g.VintoCallerID == "" {
		// No caller: plain lowest score wins.
		res.WinnerID = lowestOf(res.Scores, nil)
		return res
	}

	callerScore := res.Scores[g.VintoCallerID]
	res.CallerWon = true
	for id, s := range res.Scores {
		if id != g.VintoCallerID && s < callerScore {
			res.CallerWon = false
			break
		}
	}

	if res.CallerWon {
		res.WinnerID = g.VintoCallerID
		return res
	}

	res.ChampionID = g.CoalitionLeaderID
	if res.ChampionID == "" {
		res.ChampionID = lowestOf(res.Scores, map[string]bool{g.VintoCallerID: true})
	}
	res.WinnerID = res.ChampionID
	return res
}

// lowestOf returns the ID with the lowest score, skipping excluded IDs.
// Ties break by seat-independent ID ordering for determinism.
func lowestOf(scores map[string]int, exclude map[string]bool) string {
	best := ""
	bestScore := 0
	for id, s := range scores {
		if exclude[id] {
			continue
		}
		if best == "" || s < bestScore || (s == bestScore && id < best) {
			best = id
			bestScore = s
		}
	}
	return best
}
