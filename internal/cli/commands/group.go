package commands

import (
	"context"
	"fmt"
	"strings"

	"uunn/internal/cli/bootstrap"
	"uunn/internal/cli/service"
	"uunn/internal/config"
)

type groupCreateCmd struct{}

func (groupCreateCmd) Name() string        { return "group-create" }
func (groupCreateCmd) Description() string { return "Create a group with a fresh group key" }
func (groupCreateCmd) Usage() string       { return "group-create <name>" }

func (groupCreateCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	name := strings.Join(args, " ")
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

	m, err := app.Groups.CreateGroup(ctx, name, id)
	if err != nil {
		return err
	}
	success("Group %q created", m.GroupName)
	hint("Group id: %s", m.GroupID)
	hint("Join code: %s (joins without access to content)", m.JoinCode)
	return nil
}

type groupJoinCmd struct{}

func (groupJoinCmd) Name() string        { return "group-join" }
func (groupJoinCmd) Description() string { return "Join a group by its code (no content access)" }
func (groupJoinCmd) Usage() string       { return "group-join <code>" }

func (groupJoinCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	app, cleanup, err := bootstrap.Open(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := app.Groups.JoinByLegacyCode(ctx, args[0])
	if err != nil {
		return err
	}
	success("Member of %q (id %s)", m.GroupName, m.GroupID)
	if !service.HasContentAccess(m) {
		warn("No access to group content yet")
		hint("Ask a member for an invite link and run invite-redeem")
	}
	return nil
}

type groupsCmd struct{}

func (groupsCmd) Name() string        { return "groups" }
func (groupsCmd) Description() string { return "List your groups" }
func (groupsCmd) Usage() string       { return "groups" }

func (groupsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	app, cleanup, err := bootstrap.Open(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	list, err := app.Client.Groups(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "No groups")
		return nil
	}
	for _, m := range list {
		fmt.Fprintf(Out, "%s  %-36s  %-24s  %-6s  %s\n",
			mark(service.HasContentAccess(m)), m.GroupID, m.GroupName, m.Role, m.JoinCode)
	}
	return nil
}

type membersCmd struct{}

func (membersCmd) Name() string        { return "members" }
func (membersCmd) Description() string { return "List group members and who holds the key" }
func (membersCmd) Usage() string       { return "members <group-id>" }

func (membersCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	app, cleanup, err := bootstrap.Open(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	list, err := app.Client.Members(ctx, args[0])
	if err != nil {
		return err
	}
	for _, m := range list {
		fmt.Fprintf(Out, "%s  %-24s  %s\n", mark(m.HasKey), m.Login, m.Role)
	}
	return nil
}

func init() {
	RegisterCmd(groupCreateCmd{})
	RegisterCmd(groupJoinCmd{})
	RegisterCmd(groupsCmd{})
	RegisterCmd(membersCmd{})
}
