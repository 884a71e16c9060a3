package display

import (
	"strconv"
	"strings"
	"time"
)

// periodicDueDays is the age in days beyond which a test result counts as
// out of date. Strictly greater than, so a result exactly this old is still
// current.
const periodicDueDays = 182

var sampleDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"01/02/2006",
}

func parseSampleDate(s string) (time.Time, bool) {
	for _, layout := range sampleDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Evaluate inspects each test that has result data and produces advisory
// messages grouped by panel. Panels whose tests produced no messages are
// left out of the result.
func Evaluate(panels []CheckPanel, now time.Time) []PanelMessages {
	var answer []PanelMessages
	for _, panel := range panels {
		for _, test := range panel.Tests {
			if !test.HasData || len(test.Data) == 0 {
				continue
			}
			msgs := evalTest(test, now)
			if len(msgs) == 0 {
				continue
			}
			answer = appendMessages(answer, panel.PanelName, msgs)
		}
	}
	return answer
}

func evalTest(test CheckTest, now time.Time) []Message {
	var messages []Message
	latest := test.Data[0]

	if when, ok := parseSampleDate(latest.Date); ok {
		elapsed := int(now.Sub(when).Hours() / 24)
		if elapsed > periodicDueDays {
			messages = append(messages, Message{
				Type:   MessagePeriodicTestDue,
				Action: "Consider checking " + test.TestName + " today.",
				Reason: test.TestName + " has not been checked in six months.",
				Note:   test.TestName + " was last tested on " + latest.Date,
			})
		}
	}

	// A value that does not parse as a number is never flagged abnormal, and
	// a test without a reference range cannot be out of range. Boundary
	// values are normal.
	if value, err := strconv.ParseFloat(strings.TrimSpace(latest.Value), 64); err == nil {
		if (test.Min != nil && value < *test.Min) || (test.Max != nil && value > *test.Max) {
			messages = append(messages, Message{
				Type:   MessageAbnormalValue,
				Reason: test.TestName + " is abnormal (value: " + latest.Value + test.Units +
					", normal range: " + test.Range + test.Units + ")",
				Note: test.TestName + " was last tested on " + latest.Date,
			})
		}
	}
	return messages
}

func appendMessages(answer []PanelMessages, panelName string, msgs []Message) []PanelMessages {
	for i := range answer {
		if answer[i].PanelName == panelName {
			answer[i].Messages = append(answer[i].Messages, msgs...)
			return answer
		}
	}
	return append(answer, PanelMessages{PanelName: panelName, Messages: msgs})
}
