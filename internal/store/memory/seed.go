package memory

import (
	"time"

	"github.com/vovakirdan/chatql-server/internal/store"
)

// SeedMembers returns the built-in member list.
func SeedMembers() []store.Member {
	return []store.Member{
		{ID: "Ammiel Yawson", Name: "Ammiel Yawson", Channels: []string{"Pubg"}},
		{ID: "Samuel Amenyedor", Name: "Samuel Amenyedor", Channels: []string{"Pubg", "Apex"}},
		{ID: "Daniel Amenyedor", Name: "Daniel Amenyedor", Channels: []string{"Pubg", "Apex"}},
	}
}

// SeedChannels returns the built-in channels. Pubg carries a short reply
// thread; Apex starts without a message list.
func SeedChannels() []store.Channel {
	return []store.Channel{
		{
			ID:       "Pubg",
			Name:     "Pubg",
			FullName: "Players Underground Battleground",
			Type:     "Battleroyale",
			Members:  []string{"Ammiel Yawson", "Samuel Amenyedor", "Daniel Amenyedor"},
			Messages: []store.Message{
				{ID: "1", Content: "Hi everyone!", Author: "Ammiel Yawson", CreatedAt: day(14)},
				{ID: "2", Content: "Can we team up tonight?", Author: "Ammiel Yawson", CreatedAt: day(15)},
				{
					ID:        "3",
					Content:   "Tonight? I got a tournament in Apex. We can set it up for this weekend tho. I'll be available.",
					Author:    "Samuel Amenyedor",
					CreatedAt: day(16),
					ReplyTo:   ref("2"),
				},
				{ID: "4", Content: "Yeah me too", Author: "Daniel Amenyedor", CreatedAt: day(17), ReplyTo: ref("3")},
				{ID: "5", Content: "Sellouts 🌚", Author: "Ammiel Yawson", CreatedAt: day(18), ReplyTo: ref("4")},
			},
		},
		{
			ID:       "Apex",
			Name:     "Apex",
			FullName: "Apex Legends",
			Type:     "Battleroyale",
			Members:  []string{"Samuel Amenyedor", "Daniel Amenyedor"},
		},
	}
}

// day returns midnight UTC of the given day in April 2022.
func day(d int) time.Time {
	return time.Date(2022, time.April, d, 0, 0, 0, 0, time.UTC)
}

func ref(id string) *string {
	return &id
}
