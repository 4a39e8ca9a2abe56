package core

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/encodeous/strand/state"
)

// Inspect renders accounts, peers, hold-downs and the routing table in a human-readable form
func Inspect(s *state.State) string {
	sb := strings.Builder{}
	accounts := Get[*Accounts](s)
	b := Get[*RouteBroadcaster](s)

	sb.WriteString("Accounts:\n")
	for _, id := range accounts.Ids() {
		acct, err := accounts.Get(id)
		if err != nil {
			continue
		}
		sb.WriteString(fmt.Sprintf(" - %s (%s, %s/%d, plugin %s, connected %t)\n",
			id, acct.Info.Relation, acct.Info.AssetCode, acct.Info.AssetScale, acct.Info.Plugin, acct.Plugin.IsConnected()))
	}

	sb.WriteString("\n\nPeers:\n")
	for _, p := range b.sortedPeers() {
		sb.WriteString(fmt.Sprintf(" - %s\n", p.Id))
		sb.WriteString(fmt.Sprintf("   Receiver: %s table=%s epoch=%d", p.State, p.RoutingTableId, p.Epoch))
		if !p.Expiry.IsZero() {
			sb.WriteString(fmt.Sprintf(" expires %.2fs", time.Until(p.Expiry).Seconds()))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("   Sender: %s acked=%d\n", p.Mode, p.LastAckEpoch))
		sb.WriteString("   Learned Routes:\n")
		rt := make([]string, 0)
		if len(p.Routes) == 0 {
			rt = append(rt, "    (none)")
		}
		for prefix, r := range p.Routes {
			rt = append(rt, fmt.Sprintf("    - %s %s", prefix, r))
		}
		slices.Sort(rt)
		sb.WriteString(strings.Join(rt, "\n") + "\n")
	}

	sb.WriteString("\n\nHold-downs:\n")
	rt := make([]string, 0)
	for _, h := range Get[*HoldDowns](s).Active() {
		rt = append(rt, fmt.Sprintf(" - %s from %s expires %.2fs", h.Prefix, h.Peer, time.Until(h.ExpiresAt).Seconds()))
	}
	slices.Sort(rt)
	sb.WriteString(strings.Join(rt, "\n") + "\n")

	sb.WriteString(fmt.Sprintf("\n\nForwarding Table: id=%s epoch=%d\n", b.Forwarding.Id, b.Forwarding.CurrentEpoch))

	sb.WriteString("\n\nRoute Table:\n")
	sb.WriteString(b.Table.String() + "\n")
	return sb.String()
}
