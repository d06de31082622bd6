package achievements

import "github.com/pastrypath/pastrypath/internal/history"

// MetricsFromStats projects the history rollup onto requirement metrics.
func MetricsFromStats(s history.Stats) Metrics {
	return Metrics{
		ModulesCompleted: s.TotalModulesCompleted,
		PathsCompleted:   s.TotalPathsCompleted,
		StreakDays:       s.CurrentStreak,
		TimeSpentMinutes: s.TotalTimeSpentMinutes,
		AverageScore:     s.AverageScore,
	}
}

// DefaultDefinitions returns the built-in achievements and badges.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			ID: "first-bake", Kind: KindAchievement, Title: "First Bake",
			Description: "Complete your first module", Icon: "🧁", Points: 10,
			Requirements: []Requirement{{Type: ReqModulesCompleted, Value: 1}},
		},
		{
			ID: "apprentice-baker", Kind: KindAchievement, Title: "Apprentice Baker",
			Description: "Complete 5 modules", Icon: "🥐", Points: 25,
			Requirements: []Requirement{{Type: ReqModulesCompleted, Value: 5}},
			Dependencies: []string{"first-bake"},
		},
		{
			ID: "dedicated-baker", Kind: KindAchievement, Title: "Dedicated Baker",
			Description: "Complete 20 modules", Icon: "🎂", Points: 50,
			Requirements: []Requirement{{Type: ReqModulesCompleted, Value: 20}},
			Dependencies: []string{"apprentice-baker"},
		},
		{
			ID: "path-finder", Kind: KindAchievement, Title: "Path Finder",
			Description: "Complete a learning path", Icon: "🗺", Points: 30,
			Requirements: []Requirement{{Type: ReqPathsCompleted, Value: 1}},
		},
		{
			ID: "well-rounded", Kind: KindAchievement, Title: "Well Rounded",
			Description: "Complete 3 learning paths", Icon: "🍰", Points: 75,
			Requirements: []Requirement{{Type: ReqPathsCompleted, Value: 3}},
			Dependencies: []string{"path-finder"},
		},
		{
			ID: "on-a-roll", Kind: KindAchievement, Title: "On a Roll",
			Description: "Keep a 3-day learning streak", Icon: "🔥", Points: 15,
			Requirements: []Requirement{{Type: ReqStreakDays, Value: 3}},
		},
		{
			ID: "week-of-whisking", Kind: KindAchievement, Title: "Week of Whisking",
			Description: "Keep a 7-day learning streak", Icon: "📅", Points: 40,
			Requirements: []Requirement{{Type: ReqStreakDays, Value: 7}},
			Dependencies: []string{"on-a-roll"},
		},
		{
			ID: "proofing-patience", Kind: KindAchievement, Title: "Proofing Patience",
			Description: "Spend 10 hours learning", Icon: "⏳", Points: 30,
			Requirements: []Requirement{{Type: ReqTimeSpent, Value: 600}},
		},
		{
			ID: "high-marks", Kind: KindAchievement, Title: "High Marks",
			Description: "Average 90 or better across 5 modules", Icon: "⭐", Points: 50,
			Requirements: []Requirement{
				{Type: ReqAverageScore, Value: 90},
				{Type: ReqModulesCompleted, Value: 5},
			},
		},
		{
			ID: "master-patissier", Kind: KindAchievement, Title: "Master Pâtissier",
			Description: "Complete 5 paths with a 14-day streak", Icon: "👑", Points: 150,
			Requirements: []Requirement{
				{Type: ReqPathsCompleted, Value: 5},
				{Type: ReqStreakDays, Value: 14},
			},
			Dependencies: []string{"well-rounded", "week-of-whisking"},
		},
		{
			ID: "bronze-whisk", Kind: KindBadge, Title: "Bronze Whisk",
			Description: "Earn 50 achievement points", Points: 5,
			Requirements: []Requirement{{Type: ReqPoints, Value: 50}},
		},
		{
			ID: "silver-whisk", Kind: KindBadge, Title: "Silver Whisk",
			Description: "Earn 150 achievement points", Points: 10,
			Requirements: []Requirement{{Type: ReqPoints, Value: 150}},
			Dependencies: []string{"bronze-whisk"},
		},
		{
			ID: "gold-whisk", Kind: KindBadge, Title: "Gold Whisk",
			Description: "Earn 300 achievement points", Points: 25,
			Requirements: []Requirement{{Type: ReqPoints, Value: 300}},
			Dependencies: []string{"silver-whisk"},
		},
	}
}
