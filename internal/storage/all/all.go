// Package all registers every storage backend with the factory. Commands
// blank-import it so the -store flag can select any backend at runtime.
package all

import (
	_ "keyscout/internal/storage/mssql"
	_ "keyscout/internal/storage/postgres"
	_ "keyscout/internal/storage/sqlite"
)
