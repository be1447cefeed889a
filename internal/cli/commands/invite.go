package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"uunn/internal/cli/api"
	"uunn/internal/cli/bootstrap"
	"uunn/internal/cli/service"
	"uunn/internal/config"
)

type inviteCreateCmd struct{}

func (inviteCreateCmd) Name() string { return "invite-create" }
func (inviteCreateCmd) Description() string {
	return "Create an invite link that carries the group key"
}
func (inviteCreateCmd) Usage() string {
	return "invite-create [-max N] [-ttl 24h] <group-id>"
}

func (c inviteCreateCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	flags.SetOutput(Out)
	maxUses := flags.Int("max", -1, "redemptions allowed (0 = unlimited, default server policy)")
	ttl := flags.Duration("ttl", 0, "invite lifetime (default server policy)")
	if err := flags.Parse(args); err != nil || flags.NArg() != 1 {
		return ErrUsage
	}
	opts := service.InviteOptions{TTL: *ttl}
	if *maxUses >= 0 {
		opts.MaxRedemptions = maxUses
	}

	app, cleanup, err := bootstrap.Open(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	id, err := app.Auth.Identity()
	if err != nil {
		return err
	}
	defer id.Wipe()

	var link service.InviteLink
	err = withSpinner("Generating invite key...", func() error {
		var err error
		link, err = app.Invites.CreateInvite(ctx, flags.Arg(0), id, opts)
		return err
	})
	if err != nil {
		return err
	}
	success("Invite created")
	// единственный вывод, содержащий секрет: сама ссылка
	hint("Share this link over a private channel:")
	fmt.Fprintln(Out, link.URL())
	if *ttl > 0 {
		hint("Expires in %s", ttl.Round(time.Second))
	}
	return nil
}

type inviteRedeemCmd struct{}

func (inviteRedeemCmd) Name() string        { return "invite-redeem" }
func (inviteRedeemCmd) Description() string { return "Redeem an invite link and receive the group key" }
func (inviteRedeemCmd) Usage() string       { return "invite-redeem <link>" }

func (inviteRedeemCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	link, err := service.ParseInviteLink(args[0])
	if err != nil {
		return err
	}
	app, cleanup, err := bootstrap.Open(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	id, err := app.Auth.Identity()
	if err != nil {
		return err
	}
	defer id.Wipe()

	m, err := app.Invites.RedeemInvite(ctx, link, id)
	if errors.Is(err, api.ErrAlreadyMember) {
		success("Already a member of %s with access to content", m.GroupID)
		return nil
	}
	if err != nil {
		return err
	}
	success("Joined group %s with access to content", m.GroupID)
	return nil
}

func init() {
	RegisterCmd(inviteCreateCmd{})
	RegisterCmd(inviteRedeemCmd{})
}
