package main

import (
	"os"

	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	APIKey     string `help:"Gemini API key (default: GEMCHAT_API_KEY or GOOGLE_API_KEY)"`
	BaseURL    string `help:"Custom API base URL"`
	Model      string `short:"m" help:"Model to chat with"`
	DB         string `name:"db" type:"path" help:"Chat history database"`
	ConfigFile string `name:"config" type:"path" help:"Extra config file, applied after the discovered ones"`
	LogLevel   string `help:"Log level (debug, info, warn, error)"`
	NoColor    bool   `help:"Disable colors and syntax highlighting"`

	Chat      ChatCmd      `cmd:"" default:"withargs" help:"Chat with history (default)"`
	Stateless StatelessCmd `cmd:"" help:"Chat without history; changing a parameter clears the chat"`
	Threads   ThreadsCmd   `cmd:"" help:"Manage saved chats"`
	Models    ModelsCmd    `cmd:"" help:"List available models"`
	Migrate   MigrateCmd   `cmd:"" help:"Database migrations"`
	Config    ConfigCmd    `cmd:"" help:"Show or initialise configuration"`
	Version   VersionCmd   `cmd:"" help:"Show version and host information"`
}

var version = "dev"

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("gemchat"),
		kong.Description("Chat with Gemini from the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	if err := ctx.Run(&cli); err != nil {
		NewErrorHandler(createCLILogger(cli.LogLevel)).HandleError(err)
	}
	os.Exit(ExitSuccess)
}
