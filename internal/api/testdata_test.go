package api

import (
	"time"

	"github.com/kalambet/fbdash/internal/dataset"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testDataset() *dataset.Dataset {
	return dataset.New([]dataset.Record{
		{Brand: "A", Model: "X", Fact: "Engine", Country: "US", Source: "Web", Feedback: "loud at idle", Date: day(2023, 1, 10)},
		{Brand: "B", Model: "Y", Fact: "Brake", Country: "UK", Source: "App", Feedback: "squeaks", Date: day(2023, 2, 15)},
		{Brand: "A", Model: "X", Fact: "Seats", Country: "US", Source: "App", Feedback: "firm", Date: day(2023, 3, 1)},
		{Brand: "A", Model: "Z", Fact: "Engine", Country: "DE", Source: "Web", Feedback: "smooth", Date: day(2023, 3, 5)},
		{Brand: "B", Model: "Y", Fact: "Engine", Country: "UK", Source: "Web", Feedback: "thirsty", Date: day(2023, 4, 2)},
		{Brand: "A", Model: "X", Fact: "Engine", Country: "US", Source: "Forum", Feedback: "reliable", Date: day(2023, 4, 20)},
		{Brand: "C", Model: "Q", Fact: "Steering", Country: "SE", Source: "App", Feedback: "light", Date: day(2023, 5, 1)},
	})
}
