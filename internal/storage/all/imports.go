// Package all links every storage backend into the binary. Import it for
// side effects:
//
//	import _ "stageload/internal/storage/all"
package all

import (
	_ "stageload/internal/storage/mssql"
	_ "stageload/internal/storage/mysql"
	_ "stageload/internal/storage/postgres"
	_ "stageload/internal/storage/sqlite"
)
