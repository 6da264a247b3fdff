/*
Package config manages configuration parsing and validation for fsops.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |           |           |
	+-----+-----+ +---+----+ +----+----+
	|   YAML    | |  JSON  | |   HCL   |
	|  Parser   | | Parser | | Parser  |
	+-----------+ +--------+ +---------+

🎯 Purpose:
- Loads the numbering, history and trash settings of the mutation engine
- Validates configuration values and applies defaults
- Supports YAML, JSON and HCL formats, chosen by file extension

🔄 Flow:
1. Reads configuration from file
2. Parses format-specific syntax
3. Validates configuration values and fills defaults
4. Provides validated config to the engine

🤝 Interfaces:
- Parser: Format-specific parsing, registered at init time
*/
package config
