// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow mirroring the section design flows:
//  1. [ProjectListView] : Browse and select projects
//  2. [SectionListView] : Browse a project's sections or start a new one
//  3. [CameraView] : Attach a room photo by file path
//  4. [PhotographView] : Confirm the attached photo
//  5. [RoomTypeView] : Pick the room type
//  6. [ProductListView] : Search the catalog and toggle product selections
//  7. [SectionDetailView] : Review the section and watch rendering progress
//  8. [PromptView] : Enter the prompt and submit a rendering job
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Forward and backward movement between the flow views is resolved by the
// session flow tables, so the TUI and the non-interactive commands navigate
// identically. Section updates flow through a channel from the generation
// tracker, providing non-blocking status reporting while renderings are in
// flight.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
