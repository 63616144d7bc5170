package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

// PlaylistsList prints every stored playlist with its track count.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	env, err := r.setup(cmd)
	if err != nil {
		return err
	}
	st, err := r.openStore(env)
	if err != nil {
		return err
	}
	defer st.Close()

	playlists := st.Playlists()
	if len(playlists) == 0 {
		return r.writePlainln("no playlists")
	}
	for _, playlist := range playlists {
		if err := r.writePlainln("%s  %s (%d tracks)", playlist.ID, playlist.Name, len(playlist.SongIDs)); err != nil {
			return err
		}
	}
	return nil
}

// PlaylistsShow prints one playlist's name and track ids.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("a playlist id is required")
	}
	env, err := r.setup(cmd)
	if err != nil {
		return err
	}
	st, err := r.openStore(env)
	if err != nil {
		return err
	}
	defer st.Close()

	playlist, ok := st.PlaylistByID(id)
	if !ok {
		return fmt.Errorf("no playlist with id %s", id)
	}
	r.writePlainln("%s (%d tracks)", playlist.Name, len(playlist.SongIDs))
	for _, songID := range playlist.SongIDs {
		r.writePlainln("  %s", songID)
	}
	return nil
}

// PlaylistsCreate creates an empty playlist and prints its generated id.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("a playlist name is required")
	}
	env, err := r.setup(cmd)
	if err != nil {
		return err
	}
	st, err := r.openStore(env)
	if err != nil {
		return err
	}
	defer st.Close()

	playlist, err := st.CreatePlaylist(name)
	if err != nil {
		return err
	}
	return r.writePlainln("created %s  %s", playlist.ID, playlist.Name)
}

// PlaylistsRename renames a playlist.
func (r *Runner) PlaylistsRename(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	name := strings.TrimSpace(cmd.StringArg("name"))
	if id == "" || name == "" {
		return fmt.Errorf("a playlist id and a new name are required")
	}
	env, err := r.setup(cmd)
	if err != nil {
		return err
	}
	st, err := r.openStore(env)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.RenamePlaylist(id, name); err != nil {
		return err
	}
	return r.writePlainln("renamed %s to %s", id, name)
}

// PlaylistsDelete deletes a playlist.
func (r *Runner) PlaylistsDelete(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("a playlist id is required")
	}
	env, err := r.setup(cmd)
	if err != nil {
		return err
	}
	st, err := r.openStore(env)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeletePlaylist(id); err != nil {
		return err
	}
	return r.writePlainln("deleted %s", id)
}

// PlaylistsAdd appends a track id to a playlist, ignoring duplicates.
func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	songID := strings.TrimSpace(cmd.StringArg("song"))
	if id == "" || songID == "" {
		return fmt.Errorf("a playlist id and a track id are required")
	}
	env, err := r.setup(cmd)
	if err != nil {
		return err
	}
	st, err := r.openStore(env)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.AddToPlaylist(id, songID); err != nil {
		return err
	}
	return r.writePlainln("added %s to %s", songID, id)
}

// PlaylistsRemove removes a track id from a playlist.
func (r *Runner) PlaylistsRemove(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	songID := strings.TrimSpace(cmd.StringArg("song"))
	if id == "" || songID == "" {
		return fmt.Errorf("a playlist id and a track id are required")
	}
	env, err := r.setup(cmd)
	if err != nil {
		return err
	}
	st, err := r.openStore(env)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.RemoveFromPlaylist(id, songID); err != nil {
		return err
	}
	return r.writePlainln("removed %s from %s", songID, id)
}
