package bot

import (
	"sync"
	"weak"
)

// exitHooks holds non-owning references to bots wanting a farewell at
// process exit. Weak pointers keep registration from pinning a bot in memory
// after the caller has dropped it.
var exitHooks = struct {
	mu   sync.Mutex
	bots []weak.Pointer[Bot]
}{}

// RegisterExitHook enrolls the bot for best-effort teardown at process exit.
// The registration never keeps the bot alive; a bot reclaimed by the garbage
// collector before exit is simply skipped.
func RegisterExitHook(b *Bot) {
	exitHooks.mu.Lock()
	exitHooks.bots = append(exitHooks.bots, weak.Make(b))
	exitHooks.mu.Unlock()
}

// RunExitHooks sends a farewell and forces shutdown on every registered bot
// still alive. All errors are swallowed; the process is leaving either way.
// The binary calls this from its signal handler.
func RunExitHooks() {
	exitHooks.mu.Lock()
	bots := exitHooks.bots
	exitHooks.bots = nil
	exitHooks.mu.Unlock()

	for _, ref := range bots {
		b := ref.Value()
		if b == nil {
			continue
		}
		if b.IsConnected() {
			_ = b.SendRawLine("QUIT :exiting")
		}
		_ = b.Shutdown(true)
	}
}
