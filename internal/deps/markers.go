// Package deps synthesizes a dependency manifest for a bot's workspace when
// the user didn't supply one. Marker tables are data, not code, so tests
// can substitute smaller tables.
package deps

// Marker is one recognized import substring and the pin it contributes.
type Marker struct {
	Substring string
	Pin       string
}

// RuntimeAMarkers maps recognized import substrings to the package pin
// they imply, for the scripting runtime.
var RuntimeAMarkers = []Marker{
	{"discord.py", "discord.py>=2.3.0"},
	{"import discord", "discord.py>=2.3.0"},
	{"from discord", "discord.py>=2.3.0"},
	{"aiohttp", "aiohttp>=3.8.0"},
	{"requests", "requests>=2.28.0"},
	{"dotenv", "python-dotenv>=0.19.0"},
	{"python-dotenv", "python-dotenv>=0.19.0"},
	{"pymysql", "PyMySQL>=1.0.0"},
	{"mysql", "PyMySQL>=1.0.0"},
	{"psycopg", "psycopg2-binary>=2.9.0"},
	{"postgres", "psycopg2-binary>=2.9.0"},
}

// RuntimeABaseline is added when no marker matched but at least one source
// file exists.
const RuntimeABaseline = "discord.py>=2.3.0"

// RuntimeAExtensions are the source file extensions scanned for Runtime A.
var RuntimeAExtensions = []string{".py"}

// RuntimeBMarkers maps recognized import substrings to the package pin
// they imply, for the event-loop runtime. Pin is the package.json
// dependency name; version is carried in RuntimeBVersions.
var RuntimeBMarkers = []Marker{
	{"discord.js", "discord.js"},
	{"require('discord.js')", "discord.js"},
	{`require("discord.js")`, "discord.js"},
	{"@discordjs/builders", "@discordjs/builders"},
	{"@discordjs/rest", "@discordjs/rest"},
	{"@discordjs/voice", "@discordjs/voice"},
	{"dotenv", "dotenv"},
	{"axios", "axios"},
	{"node-fetch", "node-fetch"},
	{"fs-extra", "fs-extra"},
	{"moment", "moment"},
	{"lodash", "lodash"},
	{"sqlite3", "sqlite3"},
	{"mysql2", "mysql2"},
	{"mysql", "mysql"},
	{"mongoose", "mongoose"},
	{"mongodb", "mongodb"},
}

// RuntimeBVersions pins a version for each dependency name RuntimeBMarkers
// can emit.
var RuntimeBVersions = map[string]string{
	"discord.js":           "^14.14.1",
	"@discordjs/builders":  "^1.7.0",
	"@discordjs/rest":      "^2.2.0",
	"@discordjs/voice":     "^0.16.1",
	"dotenv":               "^16.3.1",
	"axios":                "^1.6.2",
	"node-fetch":           "^3.3.2",
	"fs-extra":             "^11.2.0",
	"moment":               "^2.29.4",
	"lodash":               "^4.17.21",
	"sqlite3":              "^5.1.6",
	"mysql2":               "^3.6.5",
	"mysql":                "^2.18.1",
	"mongoose":             "^8.0.3",
	"mongodb":              "^6.3.0",
}

// RuntimeBBaseline is the package.json dependency added when no marker
// matched but at least one source file exists.
const RuntimeBBaseline = "discord.js"

// RuntimeBExtensions are the source file extensions scanned for Runtime B.
var RuntimeBExtensions = []string{".js", ".mjs", ".cjs"}
