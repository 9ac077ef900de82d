/*
Package domain contains the core entities of the Colloquio dialogue engine.

It defines the interview question set, the per-session state threaded through
every turn, and the records handed to external collaborators (recorder,
stores). This package is kept pure and free of I/O, following Hexagonal
Architecture principles.

# Key Entities

  - Question: an item from the fixed, ordered interview question set.
  - SessionState: the runtime snapshot of one interview session (position,
    mode, deepening counters, Q/A history, per-question signals).
  - TurnRecord / BranchRecord / SessionSummary: the payloads consumed by the
    session recorder port.
*/
package domain
