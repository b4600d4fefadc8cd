// Package norflash is a host library and CLI for probing, reading,
// writing, and erasing SPI NOR flash chips, with a change-minimizing
// smart-write pipeline and a device-side batch wire protocol for
// microcontroller-based programmers.
//
// # References:
//
// FTDI (https://ftdichip.com/document/application-notes/)
//   - [FTDI-AN_108]: Command Processor for MPSSE and MCU Host Bus Emulation Modes (https://ftdichip.com/wp-content/uploads/2020/08/AN_108_Command_Processor_for_MPSSE_and_MCU_Host_Bus_Emulation_Modes.pdf)
//   - [FTDI-AN_114]: Interfacing FT2232H Hi-Speed Devices To SPI Bus (https://ftdichip.com/wp-content/uploads/2020/08/AN_114_FTDI_Hi_Speed_USB_To_SPI_Example.pdf)
//   - [FTDI-AN_135]: FTDI MPSSE Basics (https://ftdichip.com/wp-content/uploads/2020/08/AN_135_MPSSE_Basics.pdf)
//   - [FTDI-DS_FT2232H]: FT2232H Hi-Speed Dual USB UART/FIFO IC Data Sheet (https://ftdichip.com/wp-content/uploads/2024/09/DS_FT2232H.pdf)
//
// SPI NOR flash
//   - [N25Q32]: N25Q032A Micron Serial NOR Flash Memory datasheet (could not find the official public URL)
//   - [W25Q128]: W25Q128JV-DTR Winbond Serial Flash Memory (https://www.winbond.com/resource-files/W25Q128JV_DTR%20RevD%2012232024%20Plus.pdf)
//   - [JESD216]: JEDEC Serial Flash Discoverable Parameters (SFDP) standard
package norflash
