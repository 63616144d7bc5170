// Command definitions wiring Runner actions into the CLI tree.
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
	}
}

// playCommand queues library tracks and plays them to completion.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Queue matching library tracks and play them until done",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Play mode: sequence, shuffle or repeat-one (default: stored preference)",
			},
			&cli.IntFlag{
				Name:  "volume",
				Usage: "Playback volume 0-100 (default: stored preference)",
				Value: -1,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of tracks to queue",
			},
			&cli.StringFlag{
				Name:  "start",
				Usage: "Track id to start playback from",
			},
		},
		Action: r.Play,
	}
}

// serversCommand inspects and probes the configured servers.
func serversCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "servers",
		Usage: "Inspect and probe configured servers",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List configured servers",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ServersList,
			},
			{
				Name:   "test",
				Usage:  "Probe every configured server with its credentials",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ServersTest,
			},
		},
	}
}

// lyricsCommand prints synchronized lyrics for one track.
func lyricsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "lyrics",
		Usage: "Fetch and print synchronized lyrics for a track",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags:  []cli.Flag{configFlag()},
		Action: r.Lyrics,
	}
}

// playlistsCommand manages the stored playlists.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "Manage stored playlists",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List playlists",
				Flags:  []cli.Flag{configFlag()},
				Action: r.PlaylistsList,
			},
			{
				Name:  "show",
				Usage: "Show one playlist's tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.PlaylistsShow,
			},
			{
				Name:  "create",
				Usage: "Create an empty playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.PlaylistsCreate,
			},
			{
				Name:  "rename",
				Usage: "Rename a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "name"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.PlaylistsRename,
			},
			{
				Name:  "delete",
				Usage: "Delete a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.PlaylistsDelete,
			},
			{
				Name:  "add",
				Usage: "Append a track to a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "song"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.PlaylistsAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a track from a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "song"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.PlaylistsRemove,
			},
		},
	}
}

// libraryCommand exposes library snapshot operations.
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "library",
		Usage: "Library snapshot operations",
		Commands: []*cli.Command{
			{
				Name:   "refresh",
				Usage:  "Pull a fresh library snapshot and print its stats",
				Flags:  []cli.Flag{configFlag()},
				Action: r.LibraryRefresh,
			},
		},
	}
}
