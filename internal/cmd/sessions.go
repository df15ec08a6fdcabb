package cmd

// SessionsCmd manages active sessions
type SessionsCmd struct {
	Add     SessionsAddCmd     `cmd:"add" help:"Open a new session"`
	List    SessionsListCmd    `cmd:"list" help:"List active sessions" default:"1"`
	Pause   SessionsPauseCmd   `cmd:"pause" help:"Pause a running session"`
	Resume  SessionsResumeCmd  `cmd:"resume" help:"Resume a paused session"`
	AddTime SessionsAddTimeCmd `cmd:"addtime" help:"Add minutes to a fixed session"`
	SubTime SessionsSubTimeCmd `cmd:"subtime" help:"Subtract minutes from a fixed session"`
	Extend  SessionsExtendCmd  `cmd:"extend" help:"Extend a fixed session, reopening it if it already expired"`
	Pay     SessionsPayCmd     `cmd:"pay" help:"Toggle the paid flag"`
	Method  SessionsMethodCmd  `cmd:"method" help:"Set the payment method"`
	Note    SessionsNoteCmd    `cmd:"note" help:"Set or clear the session note"`
	Shift   SessionsShiftCmd   `cmd:"shift" help:"Reassign the session to another shift"`
	Close   SessionsCloseCmd   `cmd:"close" help:"Close a session and finalize its history record"`
	Del     SessionsDelCmd     `cmd:"del" help:"Delete a session (kept in history as deleted)"`
}
