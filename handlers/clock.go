package handlers

import "time"

// Clock supplies the server time; "today" for attendance, payments and stats derives from it.
type Clock func() time.Time
