package knowledge

import "time"

// Stats summarizes the loaded knowledge for the admin API.
type Stats struct {
	CachedCategories    int       `json:"cached_categories"`
	TriggerRules        int       `json:"trigger_rules"`
	AvailableCategories []string  `json:"available_categories"`
	LoadedAt            time.Time `json:"loaded_at"`
}

// CollectStats builds the stats view from the store and rule set.
func CollectStats(store *Store, rules *Rules) Stats {
	categories := store.Categories()
	return Stats{
		CachedCategories:    len(categories),
		TriggerRules:        len(rules.Get().Rules),
		AvailableCategories: categories,
		LoadedAt:            store.LoadedAt(),
	}
}
