package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/mapexport/internal/cli/ui"
	mxerrors "github.com/conduit-lang/mapexport/internal/errors"
	"github.com/conduit-lang/mapexport/internal/orm/events"
	"github.com/conduit-lang/mapexport/internal/orm/metadata"
	"github.com/conduit-lang/mapexport/internal/orm/snapshot"
	"github.com/conduit-lang/mapexport/internal/store"
)

// loadFactory reads the snapshot files into a metadata factory
func (e *Env) loadFactory(paths []string) (*metadata.Factory, error) {
	snap, err := snapshot.Load(e.Fs, paths...)
	if err != nil {
		return nil, err
	}

	em := events.NewManager()
	factory := metadata.NewFactory(snap,
		metadata.WithEventManager(em),
		metadata.WithLogger(e.Logger),
	)
	return factory, nil
}

// openStore opens the export log, or returns nil when none is configured
func (e *Env) openStore(ctx context.Context) (*store.Store, error) {
	if !e.Config.Registry.Enabled() {
		return nil, nil
	}

	st, err := store.Open(ctx, e.Config.Registry.Driver, e.Config.Registry.DSN, store.WithLogger(e.Logger))
	if err != nil {
		return nil, err
	}
	if err := st.Initialize(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// resolveClass fetches one class, printing suggestions when it is unknown
func (e *Env) resolveClass(cmd *cobra.Command, factory *metadata.Factory, className string) error {
	_, err := factory.GetClassMetadata(className)
	if mxerrors.HasCode(err, mxerrors.ErrClassNotFound) {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ClassNotFoundError(className, factory.AllClassNames(), e.NoColor))
	}
	return err
}

// printError writes structured errors in full and returns err unchanged
func (e *Env) printError(w io.Writer, err error) error {
	var list mxerrors.ErrorList
	if errors.As(err, &list) {
		for _, me := range list {
			fmt.Fprint(w, ui.MappingErrorMessage(me, e.NoColor))
		}
		return err
	}
	var me *mxerrors.MappingError
	if errors.As(err, &me) {
		fmt.Fprint(w, ui.MappingErrorMessage(me, e.NoColor))
	}
	return err
}
