/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/friendsincode/crewrota/internal/planner"
	"github.com/friendsincode/crewrota/internal/rota"
)

// DutyBlock is a maximal run of consecutive duty days for one worker.
type DutyBlock struct {
	Worker   rota.WorkerID
	FirstDay int
	LastDay  int
}

// Days is the length of the block.
func (b DutyBlock) Days() int { return b.LastDay - b.FirstDay + 1 }

// DutyBlocks lists every duty block of every worker, worker by worker.
func DutyBlocks(s rota.Schedule) []DutyBlock {
	var blocks []DutyBlock
	for _, id := range rota.Workers {
		seq := s.Worker(id)
		for day := 0; day < len(seq); day++ {
			if seq[day] != rota.Duty {
				continue
			}
			first := day
			for day+1 < len(seq) && seq[day+1] == rota.Duty {
				day++
			}
			blocks = append(blocks, DutyBlock{Worker: id, FirstDay: first, LastDay: day})
		}
	}
	return blocks
}

// ExportICal renders one all-day VEVENT per duty block.
func ExportICal(plan *planner.Plan, opts Options) *Result {
	start := opts.startDate()
	stamp := formatICalTime(time.Now())

	var buf bytes.Buffer
	buf.WriteString("BEGIN:VCALENDAR\r\n")
	buf.WriteString("VERSION:2.0\r\n")
	buf.WriteString("PRODID:-//crewrota//Rotation Export//EN\r\n")
	buf.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICalText(planTitle(plan))))
	buf.WriteString("CALSCALE:GREGORIAN\r\n")
	buf.WriteString("METHOD:PUBLISH\r\n")

	for _, b := range DutyBlocks(plan.Schedule) {
		buf.WriteString("BEGIN:VEVENT\r\n")
		buf.WriteString(fmt.Sprintf("UID:%s@crewrota\r\n", uuid.NewString()))
		buf.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", stamp))
		buf.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", formatICalDate(start.AddDate(0, 0, b.FirstDay))))
		// DTEND is exclusive for all-day events.
		buf.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", formatICalDate(start.AddDate(0, 0, b.LastDay+1))))
		buf.WriteString(fmt.Sprintf("SUMMARY:%s on duty\r\n", escapeICalText(string(b.Worker))))
		buf.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICalText(fmt.Sprintf(
			"%d duty days, %s to %s",
			b.Days(), DayLabel(b.FirstDay, plan.CoverageStartDay), DayLabel(b.LastDay, plan.CoverageStartDay)))))
		buf.WriteString(fmt.Sprintf("CATEGORIES:%s\r\n", escapeICalText(string(b.Worker))))
		buf.WriteString("TRANSP:OPAQUE\r\n")
		buf.WriteString("END:VEVENT\r\n")
	}

	buf.WriteString("END:VCALENDAR\r\n")

	return &Result{
		Data:        buf.Bytes(),
		Filename:    fmt.Sprintf("%s-%s.ics", planSlug(plan), start.Format("2006-01-02")),
		ContentType: "text/calendar; charset=utf-8",
	}
}

func planTitle(plan *planner.Plan) string {
	p := plan.Params
	return fmt.Sprintf("Rotation %dx%d induction %d", p.DutyCycleLength, p.RestCycleLength, p.InductionLength)
}

func planSlug(plan *planner.Plan) string {
	p := plan.Params
	return fmt.Sprintf("rotation-%dx%d-i%d-%dd", p.DutyCycleLength, p.RestCycleLength, p.InductionLength, plan.HorizonDays)
}

func formatICalTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func formatICalDate(t time.Time) string {
	return t.Format("20060102")
}

func escapeICalText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
