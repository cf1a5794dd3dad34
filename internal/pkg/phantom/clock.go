package phantom

import "time"

// timeAfter is swapped out by tests to make confirmation polling instant.
var timeAfter = time.After
