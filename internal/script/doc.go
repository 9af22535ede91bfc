// Package script runs Lua files that add commands to the editing core.
//
// Scripts run in a state with only the base, table, string and math
// libraries. A script registers commands through the keybridge table:
//
//	keybridge.command("greet", "insert a greeting", function(args)
//		keybridge.insert("hello " .. (args[1] or "world"))
//	end)
//
// Commands run on the core loop like the built-in ones. Every call into Lua
// is bounded by the engine timeout.
package script
