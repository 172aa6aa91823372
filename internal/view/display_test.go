package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/laboratorys/miniapp/internal/api"
)

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{5, "5"},
		{999, "999"},
		{1000, "1k"},
		{1500, "1.5k"},
		{2100, "2.1k"},
		{10000, "10k"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, FormatNumber(c.in), "input %d", c.in)
	}
}

func TestFormatWalletAddress(t *testing.T) {
	require.Equal(t, "AD2...G4a", FormatWalletAddress("AD2xyzG4a"))
	require.Equal(t, "abc", FormatWalletAddress("abc"))
	require.Equal(t, "abcde", FormatWalletAddress("abcde"))
}

func TestUpdateEnergyClamps(t *testing.T) {
	d := NewDisplay(BuildDocument())

	d.UpdateEnergy(150)
	require.Equal(t, "100/100", d.Doc.Text(ElemEnergyCount))
	require.Equal(t, "1", d.Doc.Attr(ElemEnergyBar, "scale"))

	d.UpdateEnergy(-3)
	require.Equal(t, "0/100", d.Doc.Text(ElemEnergyCount))
	require.Equal(t, "0", d.Doc.Attr(ElemEnergyBar, "scale"))

	d.UpdateEnergy(90)
	require.Equal(t, "90/100", d.Doc.Text(ElemEnergyCount))
	require.Equal(t, "0.9", d.Doc.Attr(ElemEnergyBar, "scale"))
}

func TestUpdateUI(t *testing.T) {
	d := NewDisplay(BuildDocument())
	d.UpdateUI(api.Points{Tickets: 3, Hearts: 1500, Energy: 40, Points: 2500})

	require.Equal(t, "3", d.Doc.Text(ElemTickets))
	require.Equal(t, "1.5k", d.Doc.Text(ElemHearts))
	require.Equal(t, "40/100", d.Doc.Text(ElemEnergyCount))
	require.Equal(t, "2.5k points", d.Doc.Text(ElemAirdropDesc))
	require.Equal(t, "2.5k", d.Doc.Text(ElemAirdropAmount))
}

func TestSetProfileDefaults(t *testing.T) {
	d := NewDisplay(BuildDocument())
	d.SetProfile("", "", 42)

	require.Equal(t, "User", d.Doc.Text(ElemProfileName))
	require.Equal(t, DefaultAvatar, d.Doc.Attr(ElemProfileAvatar, "src"))
	require.Equal(t, "ID 42", d.Doc.Text(ElemProfileID))
}

func TestNotifyOnlyRendersSuccessAndInfo(t *testing.T) {
	d := NewDisplay(BuildDocument())

	d.Notify("saved", "success")
	d.Notify("heads up", "info")
	d.Notify("boom", "error")
	d.Notify("hmm", "warning")

	children := d.Doc.Children(ElemNotifications)
	require.Len(t, children, 2)
	require.Equal(t, "saved", children[0].Text)
	require.Equal(t, "heads up", children[1].Text)
}

func TestHideSpinnerWithDelayAfterWindow(t *testing.T) {
	d := NewDisplay(BuildDocument())
	start := time.Now().Add(-4 * time.Second)
	d.now = func() time.Time { return start.Add(4 * time.Second) }
	d.loadingStart = start

	require.True(t, d.Doc.Visible(ElemSpinner))
	d.HideSpinnerWithDelay()
	require.False(t, d.Doc.Visible(ElemSpinner))
}

func TestHideSpinnerWithDelayWithinWindow(t *testing.T) {
	d := NewDisplay(BuildDocument())
	d.MarkLoadingStart()

	d.HideSpinnerWithDelay()
	// Window has not elapsed: the spinner must stay up for now.
	require.True(t, d.Doc.Visible(ElemSpinner))
}

func TestUpdateWallet(t *testing.T) {
	d := NewDisplay(BuildDocument())

	d.UpdateWallet("AD2xyz789abcDEF456ghiJKL789a4G")
	require.Equal(t, "AD2...a4G", d.Doc.Text(ElemWalletButton))
	require.True(t, d.Doc.Disabled(ElemWalletButton))
	require.Equal(t, "1", d.Doc.Attr(ElemWalletButton, "connected"))

	d.UpdateWallet("")
	require.Equal(t, "Connect Wallet", d.Doc.Text(ElemWalletButton))
	require.False(t, d.Doc.Disabled(ElemWalletButton))
}

func TestRenderReferrals(t *testing.T) {
	d := NewDisplay(BuildDocument())

	d.RenderReferrals(nil)
	children := d.Doc.Children(ElemReferralsList)
	require.Len(t, children, 1)
	require.Equal(t, "No referrals yet.", children[0].Text)

	d.RenderReferrals([]api.Referral{
		{Username: "alice"},
		{FirstName: "Bob"},
		{},
	})
	children = d.Doc.Children(ElemReferralsList)
	require.Len(t, children, 3)
	require.Equal(t, "alice", children[0].Text)
	require.Equal(t, "Bob", children[1].Text)
	require.Equal(t, "Name Tag", children[2].Text)
	require.Equal(t, DefaultAvatar, children[2].Attr("avatar"))
}
