package serverapp

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"raidboss/internal/difficulty"
	"raidboss/internal/game"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type statusData struct {
	Player   string
	Snapshot game.Snapshot
	Tiers    []difficulty.Tier
	Rewards  game.Rewards
}

// statusPage renders the lobby as a plain HTML page.
func statusPage(d statusData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		esc := templ.EscapeString
		printer := message.NewPrinter(language.English)
		snap := d.Snapshot
		var b strings.Builder

		b.WriteString(`<!doctype html><html lang="en"><head><meta charset="utf-8"><title>Raid Boss</title><link rel="stylesheet" href="/static/css/status.css"></head><body>`)
		fmt.Fprintf(&b, `<h1>Raid Boss</h1><p>%s &middot; personal best %s</p>`,
			esc(d.Player), printer.Sprintf("%d", snap.PersonalBestTotal))
		fmt.Fprintf(&b, `<p id="tickets">Tickets %d / %d</p>`, snap.TicketsRemaining, snap.MaxTickets)
		if snap.EventEnded {
			b.WriteString(`<p id="event-ended">The event has ended. Thanks for playing.</p>`)
		}

		b.WriteString(`<table id="tiers"><tr><th>Tier</th><th>Multiplier</th><th>Best</th><th>Status</th></tr>`)
		for _, t := range d.Tiers {
			status := "locked"
			if snap.PerTierUnlocked[t.ID] {
				status = "open"
			}
			sel := ""
			if t.ID == snap.SelectedTier {
				sel = ` class="selected"`
			}
			fmt.Fprintf(&b, `<tr%s><td>%s</td><td>x%.1f</td><td>%s</td><td>%s</td></tr>`,
				sel, esc(string(t.ID)), t.ScoreMultiplier, printer.Sprintf("%d", snap.PerTierBest[t.ID]), status)
		}
		b.WriteString(`</table>`)

		if s := snap.Session; s != nil {
			fmt.Fprintf(&b, `<section id="battle"><h2>%s battle</h2><p>Health %.1f%% &middot; %s left &middot; score %s</p></section>`,
				esc(string(s.Tier)), s.Health, s.RemainingTime.Round(100*time.Millisecond), printer.Sprintf("%d", s.LiveScore))
		}
		if r := snap.LastSettlement; r != nil {
			fmt.Fprintf(&b, `<section id="result"><h2>%s</h2><p>Final score %s (%.1f%% damage)</p>`,
				esc(string(r.Status)), printer.Sprintf("%d", r.FinalScore), r.DamagePercent)
			if r.IsNewRecord {
				b.WriteString(`<p>New record!</p>`)
			}
			if r.UnlockedTier != difficulty.None {
				fmt.Fprintf(&b, `<p>%s unlocked</p>`, esc(string(r.UnlockedTier)))
			}
			b.WriteString(`</section>`)
		}

		fmt.Fprintf(&b, `<section id="rewards"><h2>Rewards</h2><p>Rank %d`, d.Rewards.Rank)
		if br := d.Rewards.Bracket; br != nil {
			fmt.Fprintf(&b, ` (%s): %s`, esc(br.Label()), esc(strings.Join(br.Items, ", ")))
		}
		fmt.Fprintf(&b, `</p><p>%d milestone(s) ready to claim</p></section>`, d.Rewards.Claimable)

		b.WriteString(`</body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
