package http

import (
	"time"

	"github.com/dailygames/games-hub/internal/application/command"
	"github.com/dailygames/games-hub/internal/application/query"
	"github.com/dailygames/games-hub/internal/domain/game"
	"github.com/dailygames/games-hub/internal/domain/group"
	"github.com/dailygames/games-hub/internal/domain/rating"
	"github.com/dailygames/games-hub/internal/domain/score"
	"github.com/dailygames/games-hub/internal/domain/streak"
	"github.com/dailygames/games-hub/internal/domain/user"
)

// dateLayout is the wire format of game dates.
const dateLayout = "2006-01-02"

func formatDate(t time.Time) string { return t.Format(dateLayout) }

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUESTS
// ══════════════════════════════════════════════════════════════════════════════

type registerUserRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type submitScoreRequest struct {
	UserID      string  `json:"user_id"`
	GameType    string  `json:"game_type"`
	GameDate    *string `json:"game_date,omitempty"`
	RawResult   string  `json:"raw_result"`
	Attempts    *int    `json:"attempts,omitempty"`
	Solved      bool    `json:"solved"`
	Score       *int    `json:"score,omitempty"`
	TimeSeconds *int    `json:"time_seconds,omitempty"`
}

type groupNameRequest struct {
	Name string `json:"name"`
}

type joinGroupRequest struct {
	InviteCode string `json:"invite_code"`
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSES
// ══════════════════════════════════════════════════════════════════════════════

type counterDTO struct {
	Current  int     `json:"current"`
	Longest  int     `json:"longest"`
	LastDate *string `json:"last_date"`
}

func toCounter(c streak.Counter) counterDTO {
	return counterDTO{Current: c.Current, Longest: c.Longest, LastDate: formatDatePtr(c.LastDate)}
}

type userDTO struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	DisplayName   string     `json:"display_name,omitempty"`
	GlobalStreak  counterDTO `json:"global_streak"`
	AverageRating int        `json:"average_rating"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toUser(u *user.User) userDTO {
	return userDTO{
		ID:            u.ID.String(),
		Username:      u.Username,
		DisplayName:   u.DisplayName,
		GlobalStreak:  toCounter(u.GlobalStreak),
		AverageRating: u.AverageRating,
		CreatedAt:     u.CreatedAt,
	}
}

type scoreDTO struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	GameType     string    `json:"game_type"`
	GameDate     string    `json:"game_date"`
	RawResult    string    `json:"raw_result"`
	Attempts     int       `json:"attempts"`
	Solved       bool      `json:"solved"`
	Score        *int      `json:"score,omitempty"`
	TimeSeconds  *int      `json:"time_seconds,omitempty"`
	RatingChange int       `json:"rating_change"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

func toScore(s *score.Score) scoreDTO {
	return scoreDTO{
		ID:           s.ID,
		UserID:       s.UserID.String(),
		GameType:     s.GameType.String(),
		GameDate:     formatDate(s.GameDate),
		RawResult:    s.RawResult,
		Attempts:     s.Attempts,
		Solved:       s.Solved,
		Score:        s.Score,
		TimeSeconds:  s.TimeSeconds,
		RatingChange: s.RatingChange,
		SubmittedAt:  s.SubmittedAt,
	}
}

type feedItemDTO struct {
	scoreDTO
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	GameName    string `json:"game_name"`
}

type scoreFeedDTO struct {
	Date   string        `json:"date"`
	Scores []feedItemDTO `json:"scores"`
}

func toScoreFeed(f *query.ScoreFeed) scoreFeedDTO {
	dto := scoreFeedDTO{Date: formatDate(f.Date), Scores: make([]feedItemDTO, len(f.Items))}
	for i, it := range f.Items {
		dto.Scores[i] = feedItemDTO{
			scoreDTO:    toScore(it.Score),
			Username:    it.Username,
			DisplayName: it.DisplayName,
			GameName:    it.GameName,
		}
	}
	return dto
}

type submitScoreResponse struct {
	Score         scoreDTO   `json:"score"`
	RatingChange  int        `json:"rating_change"`
	NewRating     int        `json:"new_rating"`
	GameStreak    counterDTO `json:"game_streak"`
	GlobalStreak  counterDTO `json:"global_streak"`
	AverageRating int        `json:"average_rating"`
	GroupsUpdated int        `json:"groups_updated"`
}

func toSubmitResult(r *command.SubmitScoreResult) submitScoreResponse {
	return submitScoreResponse{
		Score:         toScore(r.Score),
		RatingChange:  r.RatingChange,
		NewRating:     r.NewRating,
		GameStreak:    toCounter(r.GameStreak),
		GlobalStreak:  toCounter(r.GlobalStreak),
		AverageRating: r.AverageRating,
		GroupsUpdated: r.GroupsUpdated,
	}
}

type ratingDTO struct {
	GameType    string  `json:"game_type"`
	Rating      int     `json:"rating"`
	GamesPlayed int     `json:"games_played"`
	GamesWon    int     `json:"games_won"`
	WinRate     float64 `json:"win_rate"`
}

type historyPointDTO struct {
	Date   string `json:"date"`
	Rating int    `json:"rating"`
}

type profileDTO struct {
	User             userDTO           `json:"user"`
	Ratings          []ratingDTO       `json:"ratings"`
	AverageRating    int               `json:"average_rating"`
	RatingHistory    []historyPointDTO `json:"rating_history,omitempty"`
	GlobalStreak     counterDTO        `json:"global_streak"`
	TotalGamesPlayed int               `json:"total_games_played"`
	RecentScores     []scoreDTO        `json:"recent_scores"`
}

func toProfile(p *query.Profile, withHistory bool) profileDTO {
	dto := profileDTO{
		User:             toUser(p.User),
		Ratings:          make([]ratingDTO, len(p.Ratings)),
		AverageRating:    p.AverageRating,
		GlobalStreak:     toCounter(p.GlobalStreak),
		TotalGamesPlayed: p.TotalGamesPlayed,
		RecentScores:     make([]scoreDTO, len(p.RecentScores)),
	}
	for i, r := range p.Ratings {
		dto.Ratings[i] = toRating(r)
	}
	for i, s := range p.RecentScores {
		dto.RecentScores[i] = toScore(s)
	}
	if withHistory {
		dto.RatingHistory = toHistory(p.RatingHistory)
	}
	return dto
}

func toRating(r *rating.Rating) ratingDTO {
	return ratingDTO{
		GameType:    r.GameType.String(),
		Rating:      r.Value,
		GamesPlayed: r.GamesPlayed,
		GamesWon:    r.GamesWon,
		WinRate:     r.WinRate(),
	}
}

func toHistory(points []rating.Point) []historyPointDTO {
	out := make([]historyPointDTO, len(points))
	for i, p := range points {
		out[i] = historyPointDTO{Date: formatDate(p.Date), Rating: p.Rating}
	}
	return out
}

type gameStreakDTO struct {
	GameType    string `json:"game_type"`
	DisplayName string `json:"display_name"`
	counterDTO
}

type streaksDTO struct {
	Global counterDTO      `json:"global"`
	Games  []gameStreakDTO `json:"games"`
}

func toStreaks(s *query.Streaks) streaksDTO {
	dto := streaksDTO{Global: toCounter(s.Global), Games: make([]gameStreakDTO, len(s.Games))}
	for i, g := range s.Games {
		dto.Games[i] = gameStreakDTO{
			GameType:    g.GameType.String(),
			DisplayName: g.DisplayName,
			counterDTO:  toCounter(g.Counter),
		}
	}
	return dto
}

type groupDTO struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	InviteCode string     `json:"invite_code"`
	OwnerID    string     `json:"owner_id"`
	MemberIDs  []string   `json:"member_ids"`
	Streak     counterDTO `json:"streak"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toGroup(g *group.FriendGroup) groupDTO {
	members := make([]string, len(g.MemberIDs))
	for i, id := range g.MemberIDs {
		members[i] = id.String()
	}
	return groupDTO{
		ID:         g.ID.String(),
		Name:       g.Name,
		InviteCode: g.InviteCode,
		OwnerID:    g.OwnerID.String(),
		MemberIDs:  members,
		Streak:     toCounter(g.Streak),
		CreatedAt:  g.CreatedAt,
	}
}

type playerFactDTO struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Value  int    `json:"value"`
}

func toFact(f *group.PlayerFact) *playerFactDTO {
	if f == nil {
		return nil
	}
	return &playerFactDTO{UserID: f.UserID.String(), Name: f.Name, Value: f.Value}
}

type groupStatsDTO struct {
	MostActiveToday *playerFactDTO `json:"most_active_today"`
	TotalGamesToday int            `json:"total_games_today"`
	LongestStreak   *playerFactDTO `json:"longest_streak"`
	ReturningPlayer *playerFactDTO `json:"returning_player"`
}

type groupViewDTO struct {
	Group              groupDTO       `json:"group"`
	Members            []userDTO      `json:"members"`
	LongestGroupStreak int            `json:"longest_group_streak"`
	Stats              *groupStatsDTO `json:"stats,omitempty"`
}

func toGroupView(v *query.GroupView, withStats bool) groupViewDTO {
	dto := groupViewDTO{
		Group:              toGroup(v.Group),
		Members:            make([]userDTO, len(v.Members)),
		LongestGroupStreak: v.LongestGroupStreak,
	}
	for i, m := range v.Members {
		dto.Members[i] = toUser(m)
	}
	if withStats {
		dto.Stats = &groupStatsDTO{
			MostActiveToday: toFact(v.Stats.MostActiveToday),
			TotalGamesToday: v.Stats.TotalGamesToday,
			LongestStreak:   toFact(v.Stats.LongestStreak),
			ReturningPlayer: toFact(v.Stats.ReturningPlayer),
		}
	}
	return dto
}

type leaderboardRowDTO struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

type leaderboardDTO struct {
	GameType  string              `json:"game_type"`
	Rows      []leaderboardRowDTO `json:"rows"`
	FromCache bool                `json:"from_cache"`
}

func toLeaderboard(lb *query.Leaderboard) leaderboardDTO {
	dto := leaderboardDTO{GameType: lb.GameType.String(), Rows: make([]leaderboardRowDTO, len(lb.Rows)), FromCache: lb.FromCache}
	for i, r := range lb.Rows {
		dto.Rows[i] = leaderboardRowDTO{Rank: r.Rank, UserID: r.UserID.String(), Name: r.Name, Rating: r.Rating}
	}
	return dto
}

type gameDTO struct {
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	MaxAttempts int    `json:"max_attempts,omitempty"`
	Curve       string `json:"curve"`
}

func toGame(d game.Definition) gameDTO {
	return gameDTO{
		Type:        d.Type.String(),
		DisplayName: d.DisplayName,
		Description: d.Description,
		URL:         d.URL,
		MaxAttempts: d.MaxAttempts,
		Curve:       d.Curve.String(),
	}
}
